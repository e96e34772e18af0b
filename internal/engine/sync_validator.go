package engine

import (
	"context"

	prmanerrors "prman.dev/prman/internal/errors"
	"prman.dev/prman/internal/git"
)

// SyncValidator checks that branches have no local commits missing from the remote
type SyncValidator struct {
	vcs VersionControl
}

// NewSyncValidator creates a new SyncValidator
func NewSyncValidator(vcs VersionControl) *SyncValidator {
	return &SyncValidator{vcs: vcs}
}

// Validate dry-run pushes the compare branch of every pull request.
// It checks all of them and reports every branch that is not up-to-date.
func (v *SyncValidator) Validate(ctx context.Context, prs []PullRequest) error {
	var diverged []string
	for _, pr := range prs {
		if v.vcs.DryRunPush(ctx, pr.Compare) != git.PushUpToDate {
			diverged = append(diverged, pr.Compare)
		}
	}
	if len(diverged) > 0 {
		return prmanerrors.NewBranchesDivergedError(diverged)
	}
	return nil
}
