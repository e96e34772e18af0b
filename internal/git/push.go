package git

import (
	"context"
	"fmt"
	"strings"
)

// PushStatus is the outcome of a dry-run push
type PushStatus int

const (
	// PushUpToDate indicates the remote branch already matches the local one
	PushUpToDate PushStatus = iota
	// PushDiverged indicates a push would change the remote, or could not be evaluated
	PushDiverged
)

func (s PushStatus) String() string {
	if s == PushUpToDate {
		return "up-to-date"
	}
	return "diverged"
}

const upToDateMarker = "Everything up-to-date"

// ParseDryRunPush interprets the stderr of `git push --dry-run`.
// Git reports push results on stderr; only the exact up-to-date marker counts as in sync.
func ParseDryRunPush(stderr string) PushStatus {
	for _, line := range strings.Split(stderr, "\n") {
		if strings.TrimSpace(line) == upToDateMarker {
			return PushUpToDate
		}
	}
	return PushDiverged
}

// PushBranch pushes a branch to remote and sets its upstream
func (r *CommandRunner) PushBranch(ctx context.Context, remote, branchName string) error {
	_, err := r.Run(ctx, "push", "-u", remote, branchName)
	if err != nil {
		return fmt.Errorf("failed to push branch %s: %w", branchName, err)
	}
	return nil
}

// ForcePushBranch pushes a rewritten branch with --force-with-lease
func (r *CommandRunner) ForcePushBranch(ctx context.Context, remote, branchName string) error {
	_, stderr, err := r.RunCaptured(ctx, "push", "--force-with-lease", remote, branchName)
	if err != nil {
		if strings.Contains(stderr, "stale info") {
			return fmt.Errorf("force-with-lease push of %s failed due to external changes to the remote branch: %w", branchName, err)
		}
		return fmt.Errorf("failed to force push branch %s: %w", branchName, err)
	}
	return nil
}

// DryRunPush reports whether pushing branchName would change the remote.
// A failing dry run counts as diverged rather than as an error.
func (r *CommandRunner) DryRunPush(ctx context.Context, remote, branchName string) PushStatus {
	_, stderr, err := r.RunCaptured(ctx, "push", "--dry-run", remote, branchName)
	if err != nil {
		return PushDiverged
	}
	return ParseDryRunPush(stderr)
}
