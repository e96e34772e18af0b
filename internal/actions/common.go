package actions

import (
	"context"
	"fmt"

	"prman.dev/prman/internal/config"
	"prman.dev/prman/internal/engine"
	prmanerrors "prman.dev/prman/internal/errors"
	"prman.dev/prman/internal/runtime"
)

// ensureCleanWorkingTree refuses to run with uncommitted changes
func ensureCleanWorkingTree(rc *runtime.Context) error {
	clean, err := rc.VCS.WorkingTreeClean()
	if err != nil {
		return fmt.Errorf("failed to check working tree: %w", err)
	}
	if !clean {
		return prmanerrors.ErrDirtyWorkingTree
	}
	return nil
}

// listOpenPullRequests returns the open pull requests whose branches are checked out
func listOpenPullRequests(ctx context.Context, rc *runtime.Context, review engine.CodeReview) ([]engine.PullRequest, error) {
	branches, err := rc.VCS.ListLocalBranches()
	if err != nil {
		return nil, fmt.Errorf("failed to list local branches: %w", err)
	}
	prs, err := review.ListOpenPullRequests(ctx, branches)
	if err != nil {
		return nil, err
	}
	rc.Splog.Debug("found %d open pull requests with local branches", len(prs))
	return prs, nil
}

// withLock runs fn while holding the repository lock
func withLock(rc *runtime.Context, command string, fn func() error) error {
	lock, err := config.AcquireLock(rc.LockPath(), command)
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			rc.Splog.Debug("failed to release lock: %v", err)
		}
	}()
	return fn()
}
