package actions

import (
	"context"
	"errors"
	"fmt"

	"prman.dev/prman/internal/engine"
	prmanerrors "prman.dev/prman/internal/errors"
	"prman.dev/prman/internal/output"
	"prman.dev/prman/internal/runtime"
)

// SubmitAction lands the pull request of the current branch into the root
// branch and rebases the pull requests stacked directly on it.
func SubmitAction(ctx context.Context, rc *runtime.Context) (*engine.LandReport, error) {
	if err := ensureCleanWorkingTree(rc); err != nil {
		return nil, err
	}

	var report *engine.LandReport
	err := withLock(rc, "submit", func() error {
		review, err := rc.CodeReview(ctx)
		if err != nil {
			return err
		}
		prs, err := listOpenPullRequests(ctx, rc, review)
		if err != nil {
			return err
		}

		current, err := rc.VCS.CurrentBranch()
		if err != nil {
			return fmt.Errorf("failed to get current branch: %w", err)
		}
		pr, ok := engine.FindByCompare(prs, current)
		if !ok {
			return prmanerrors.NewUnknownPullRequestError("branch "+current, engine.Numbers(prs))
		}

		rc.Splog.Info("Submitting %s", pr)
		report, err = engine.NewRebasePropagator(rc.VCS, review, rc.Root, rc.Splog).Land(ctx, pr, prs)
		printSubmitProgress(rc.Splog, report, err)
		return err
	})
	return report, err
}

func printSubmitProgress(splog *output.Splog, report *engine.LandReport, err error) {
	if report == nil {
		return
	}

	progress := output.NewSubmitProgress(splog)
	splog.Newline()
	progress.Landed(report.Landed.Number, report.Landed.Compare, report.Result == engine.LandAlreadyGone)
	for _, dep := range report.Rebased {
		progress.Rebased(dep.Compare)
	}

	var rebaseErr *prmanerrors.RebaseFailedError
	if errors.As(err, &rebaseErr) {
		progress.Failed(rebaseErr.Branch)
		for _, branch := range rebaseErr.Remaining {
			progress.Skipped(branch)
		}
		splog.Tip("Resolve the conflict by rebasing %s onto %s by hand, then run `prman evolve`", rebaseErr.Branch, report.Landed.Base)
	}
	progress.Complete()
}
