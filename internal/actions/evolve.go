package actions

import (
	"context"
	"fmt"

	"prman.dev/prman/internal/engine"
	prmanerrors "prman.dev/prman/internal/errors"
	"prman.dev/prman/internal/output"
	"prman.dev/prman/internal/runtime"
)

// ContinueHint is printed when a propagation pauses on a merge conflict
const ContinueHint = "Run `prman evolve --continue` once you have committed the result"

// EvolveOptions contains options for the evolve command
type EvolveOptions struct {
	// Continue resumes a propagation paused on a merge conflict
	Continue bool
}

// EvolveAction merges every base branch into its dependents down the tree of
// open pull requests, pushing each one. A merge conflict saves a checkpoint and
// returns ErrPropagationPaused together with the result.
func EvolveAction(ctx context.Context, rc *runtime.Context, opts EvolveOptions) (*engine.PropagationResult, error) {
	if err := ensureCleanWorkingTree(rc); err != nil {
		return nil, err
	}

	var result *engine.PropagationResult
	err := withLock(rc, "evolve", func() error {
		var err error
		scheduler := engine.NewScheduler(rc.VCS, rc.Store, rc.Root, rc.Splog)
		if opts.Continue {
			result, err = scheduler.Resume(ctx)
			return err
		}

		// Checked here as well so a pending run is reported before any network call.
		pending, err := rc.Store.Exists()
		if err != nil {
			return err
		}
		if pending {
			return prmanerrors.ErrPendingOperation
		}

		review, err := rc.CodeReview(ctx)
		if err != nil {
			return err
		}
		prs, err := listOpenPullRequests(ctx, rc, review)
		if err != nil {
			return err
		}
		if err := engine.ValidateArborescence(rc.Root, prs); err != nil {
			return err
		}
		printPlan(rc, prs)

		result, err = scheduler.Start(ctx, prs)
		return err
	})
	if err != nil {
		return nil, err
	}

	rc.Splog.Newline()
	if result.Status == engine.PropagationPaused {
		rc.Splog.Warn("Merge into %s stopped with conflicts", output.ColorBranchName(result.Paused.Compare, true))
		rc.Splog.Info("%s", output.ColorYellow(ContinueHint))
		return result, prmanerrors.ErrPropagationPaused
	}
	rc.Splog.Info("%s", output.ColorGreen("✓ Evolved "+pluralPullRequests(len(result.Propagated))))
	return result, nil
}

func printPlan(rc *runtime.Context, prs []engine.PullRequest) {
	if len(prs) == 0 {
		rc.Splog.Info("No open pull requests to evolve.")
		return
	}

	current, err := rc.VCS.CurrentBranch()
	if err != nil {
		current = ""
	}
	tree := engine.BuildDependencyTree(rc.Root, prs)
	renderer := output.NewStackTreeRenderer(current, rc.Root, tree.Children)
	for branch, number := range engine.BranchToPrNumber(prs) {
		renderer.SetAnnotation(branch, output.BranchAnnotation{PRNumber: number})
	}
	for _, line := range renderer.RenderStack() {
		rc.Splog.Info("%s", line)
	}
}

func pluralPullRequests(n int) string {
	if n == 1 {
		return "1 pull request"
	}
	return fmt.Sprintf("%d pull requests", n)
}
