package engine

import (
	"context"

	"prman.dev/prman/internal/git"
)

// VersionControl is the set of repository operations the engine drives.
// Mutating operations act on the single shared working tree.
type VersionControl interface {
	Checkout(ctx context.Context, branch string) error
	Push(ctx context.Context, branch string) error
	// ForcePush pushes a branch whose history was rewritten
	ForcePush(ctx context.Context, branch string) error
	// FetchRootInto fast-forwards the local root branch while another branch is checked out
	FetchRootInto(ctx context.Context, root string) error
	// PullRootInPlace fast-forwards the checked out root branch
	PullRootInPlace(ctx context.Context, root string) error
	// MergeInto merges source into the checked out branch
	MergeInto(ctx context.Context, source, message string) git.MergeResult
	// RebaseOnto moves the commits of until that are not in oldBase onto newBase.
	// A RebaseConflict comes with the command error holding git's output.
	RebaseOnto(ctx context.Context, newBase, oldBase, until string) (git.RebaseResult, error)
	AbortRebase(ctx context.Context) error
	AmendTopCommitMessage(ctx context.Context, message string) error
	CurrentBranch() (string, error)
	LastCommitInfo() (git.CommitInfo, error)
	// Revision resolves a branch name to a commit hash
	Revision(ref string) (string, error)
	DryRunPush(ctx context.Context, branch string) git.PushStatus
	WorkingTreeClean() (bool, error)
	ListLocalBranches() (map[string]bool, error)
}

// CodeReview is the review platform holding the pull requests
type CodeReview interface {
	// ListOpenPullRequests returns open pull requests whose base and compare are both in knownBranches
	ListOpenPullRequests(ctx context.Context, knownBranches map[string]bool) ([]PullRequest, error)
	// CreatePullRequest opens a pull request and returns its URL
	CreatePullRequest(ctx context.Context, req CreateRequest) (string, error)
	// LandPullRequest squash-merges pr into root and deletes its remote branch
	LandPullRequest(ctx context.Context, pr PullRequest, root string) (LandResult, error)
}

// CheckpointStore persists the state of a paused propagation
type CheckpointStore interface {
	Exists() (bool, error)
	Save(state PropagationState) error
	Load() (*PropagationState, error)
	Clear() error
}
