package git

import (
	"context"
	"fmt"
)

// MergeResult represents the result of a merge operation
type MergeResult int

const (
	// MergeDone indicates the merge succeeded
	MergeDone MergeResult = iota
	// MergeConflict indicates the merge stopped, usually on conflicts the operator must resolve
	MergeConflict
)

// FetchInto fast-forwards the local branch from its remote counterpart without checking it out.
// The branch must not be checked out.
func (r *CommandRunner) FetchInto(ctx context.Context, remote, branchName string) error {
	refspec := fmt.Sprintf("%s:%s", branchName, branchName)
	if err := r.RunInteractive(ctx, "fetch", remote, refspec); err != nil {
		return fmt.Errorf("failed to fetch %s: %w", branchName, err)
	}
	return nil
}

// Pull pulls the currently checked out branch from remote
func (r *CommandRunner) Pull(ctx context.Context, remote, branchName string) error {
	if err := r.RunInteractive(ctx, "pull", "--ff-only", remote, branchName); err != nil {
		return fmt.Errorf("failed to pull %s: %w", branchName, err)
	}
	return nil
}

// Merge merges source into the checked out branch with the given message.
// Any non-zero exit is reported as a conflict and leaves the merge in progress.
func (r *CommandRunner) Merge(ctx context.Context, source, message string) MergeResult {
	if err := r.RunInteractive(ctx, "merge", source, "-m", message); err != nil {
		return MergeConflict
	}
	return MergeDone
}
