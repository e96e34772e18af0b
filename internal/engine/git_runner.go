package engine

import (
	"context"

	"prman.dev/prman/internal/git"
)

// gitVersionControl implements VersionControl with the git binary for
// mutations and go-git for reads
type gitVersionControl struct {
	repo   *git.Repository
	runner *git.CommandRunner
	remote string
}

// NewGitVersionControl creates a VersionControl backed by a real repository
func NewGitVersionControl(repo *git.Repository, runner *git.CommandRunner, remote string) VersionControl {
	return &gitVersionControl{repo: repo, runner: runner, remote: remote}
}

func (g *gitVersionControl) Checkout(ctx context.Context, branch string) error {
	return g.runner.CheckoutBranch(ctx, branch)
}

func (g *gitVersionControl) Push(ctx context.Context, branch string) error {
	return g.runner.PushBranch(ctx, g.remote, branch)
}

func (g *gitVersionControl) ForcePush(ctx context.Context, branch string) error {
	return g.runner.ForcePushBranch(ctx, g.remote, branch)
}

func (g *gitVersionControl) FetchRootInto(ctx context.Context, root string) error {
	return g.runner.FetchInto(ctx, g.remote, root)
}

func (g *gitVersionControl) PullRootInPlace(ctx context.Context, root string) error {
	return g.runner.Pull(ctx, g.remote, root)
}

func (g *gitVersionControl) MergeInto(ctx context.Context, source, message string) git.MergeResult {
	return g.runner.Merge(ctx, source, message)
}

func (g *gitVersionControl) RebaseOnto(ctx context.Context, newBase, oldBase, until string) (git.RebaseResult, error) {
	return g.runner.RebaseOnto(ctx, newBase, oldBase, until)
}

func (g *gitVersionControl) AbortRebase(ctx context.Context) error {
	return g.runner.RebaseAbort(ctx)
}

func (g *gitVersionControl) AmendTopCommitMessage(ctx context.Context, message string) error {
	return g.runner.AmendMessage(ctx, message)
}

func (g *gitVersionControl) CurrentBranch() (string, error) {
	return g.repo.GetCurrentBranch()
}

func (g *gitVersionControl) LastCommitInfo() (git.CommitInfo, error) {
	return g.repo.GetHeadCommit()
}

func (g *gitVersionControl) Revision(ref string) (string, error) {
	return g.repo.GetRevision(ref)
}

func (g *gitVersionControl) DryRunPush(ctx context.Context, branch string) git.PushStatus {
	return g.runner.DryRunPush(ctx, g.remote, branch)
}

func (g *gitVersionControl) WorkingTreeClean() (bool, error) {
	return g.repo.IsClean()
}

func (g *gitVersionControl) ListLocalBranches() (map[string]bool, error) {
	names, err := g.repo.GetBranchNames()
	if err != nil {
		return nil, err
	}
	branches := make(map[string]bool, len(names))
	for _, name := range names {
		branches[name] = true
	}
	return branches, nil
}
