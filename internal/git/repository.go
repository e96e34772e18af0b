package git

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	prmanerrors "prman.dev/prman/internal/errors"
)

// Repository wraps a go-git repository
type Repository struct {
	*git.Repository
	path string
}

// OpenRepository opens the git repository containing path
func OpenRepository(path string) (*Repository, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	repo, err := git.PlainOpenWithOptions(absPath, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", prmanerrors.ErrNotRepository, absPath)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}

	return &Repository{
		Repository: repo,
		path:       worktree.Filesystem.Root(),
	}, nil
}

// GetRepoRoot returns the root directory of the repository
func (r *Repository) GetRepoRoot() string {
	return r.path
}

// GetBranchNames returns all local branch names
func (r *Repository) GetBranchNames() ([]string, error) {
	branches, err := r.Branches()
	if err != nil {
		return nil, fmt.Errorf("failed to get branches: %w", err)
	}

	var names []string
	err = branches.ForEach(func(ref *plumbing.Reference) error {
		if ref.Name().IsBranch() {
			names = append(names, ref.Name().Short())
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate branches: %w", err)
	}

	return names, nil
}

// GetCurrentBranch returns the current branch name
func (r *Repository) GetCurrentBranch() (string, error) {
	head, err := r.Head()
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD: %w", err)
	}

	if !head.Name().IsBranch() {
		return "", fmt.Errorf("HEAD is not on a branch")
	}

	return head.Name().Short(), nil
}

// GetRevision resolves a branch name or revision to a commit SHA
func (r *Repository) GetRevision(rev string) (string, error) {
	hash, err := r.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", rev, err)
	}
	return hash.String(), nil
}

// IsClean reports whether the working tree has no staged, unstaged or untracked changes
func (r *Repository) IsClean() (bool, error) {
	worktree, err := r.Worktree()
	if err != nil {
		return false, fmt.Errorf("failed to get worktree: %w", err)
	}
	status, err := worktree.Status()
	if err != nil {
		return false, fmt.Errorf("failed to get status: %w", err)
	}
	return status.IsClean(), nil
}

// GetHeadCommit returns the hash, title and body of the HEAD commit
func (r *Repository) GetHeadCommit() (CommitInfo, error) {
	head, err := r.Head()
	if err != nil {
		return CommitInfo{}, fmt.Errorf("failed to get HEAD: %w", err)
	}

	commit, err := r.CommitObject(head.Hash())
	if err != nil {
		return CommitInfo{}, fmt.Errorf("failed to get commit: %w", err)
	}

	title, body := SplitCommitMessage(commit.Message)
	return CommitInfo{
		Hash:  commit.Hash.String(),
		Title: title,
		Body:  body,
	}, nil
}

// GetDefaultBranch returns the branch the remote's HEAD points at, e.g. "main"
// for refs/remotes/origin/HEAD -> refs/remotes/origin/main.
func (r *Repository) GetDefaultBranch(remote string) (string, error) {
	ref, err := r.Reference(plumbing.NewRemoteHEADReferenceName(remote), false)
	if err != nil {
		return "", fmt.Errorf("failed to read %s/HEAD: %w", remote, err)
	}
	if ref.Type() != plumbing.SymbolicReference {
		return "", fmt.Errorf("%s/HEAD is not a symbolic reference", remote)
	}
	return strings.TrimPrefix(ref.Target().Short(), remote+"/"), nil
}
