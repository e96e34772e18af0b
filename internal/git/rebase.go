package git

import (
	"context"
	"fmt"
)

// RebaseResult represents the result of a rebase operation
type RebaseResult int

const (
	// RebaseDone indicates the rebase was successful
	RebaseDone RebaseResult = iota
	// RebaseConflict indicates a conflict occurred during rebase
	RebaseConflict
)

// RebaseOnto replays the commits of branchName that are not in upstream onto newBase.
// git rebase --onto <newBase> <upstream> <branchName>
// On success branchName is checked out. On failure the rebase is left in
// progress and the returned error carries git's output.
func (r *CommandRunner) RebaseOnto(ctx context.Context, newBase, upstream, branchName string) (RebaseResult, error) {
	if _, err := r.Run(ctx, "rebase", "--onto", newBase, upstream, branchName); err != nil {
		return RebaseConflict, err
	}
	return RebaseDone, nil
}

// RebaseAbort aborts an in-progress rebase
func (r *CommandRunner) RebaseAbort(ctx context.Context) error {
	_, err := r.Run(ctx, "rebase", "--abort")
	if err != nil {
		return fmt.Errorf("rebase abort failed: %w", err)
	}
	return nil
}
