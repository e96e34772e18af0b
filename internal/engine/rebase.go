package engine

import (
	"context"
	"fmt"

	prmanerrors "prman.dev/prman/internal/errors"
	"prman.dev/prman/internal/git"
	"prman.dev/prman/internal/output"
)

// RebaseMessageTemplate replaces the top commit message of every rebased dependent
const RebaseMessageTemplate = "Rebase after #%d submission via prman"

// RebasePropagator lands a pull request into the root branch and moves its
// direct dependents onto the new root tip
type RebasePropagator struct {
	vcs    VersionControl
	review CodeReview
	root   string
	splog  *output.Splog
}

// NewRebasePropagator creates a new RebasePropagator
func NewRebasePropagator(vcs VersionControl, review CodeReview, root string, splog *output.Splog) *RebasePropagator {
	return &RebasePropagator{vcs: vcs, review: review, root: root, splog: splog}
}

// Land squash-merges pr, fast-forwards the root and rebases every open pull
// request based directly on pr. Dependents further down are left to evolve.
//
// A failed rebase is aborted and reported as a RebaseFailedError; dependents
// already rebased stay pushed and nothing is checkpointed.
func (p *RebasePropagator) Land(ctx context.Context, pr PullRequest, open []PullRequest) (*LandReport, error) {
	if pr.Base != p.root {
		return nil, &prmanerrors.NotRootBasedError{Number: pr.Number, Base: pr.Base, Root: p.root}
	}

	deps := Dependents(open, pr.Compare)
	if err := NewSyncValidator(p.vcs).Validate(ctx, append([]PullRequest{pr}, deps...)); err != nil {
		return nil, err
	}

	// Must be read before landing: the squash merge leaves these commits out of the root.
	landedTip, err := p.vcs.Revision(pr.Compare)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", pr.Compare, err)
	}

	currentBranch, err := p.vcs.CurrentBranch()
	if err != nil {
		return nil, fmt.Errorf("failed to get current branch: %w", err)
	}

	result, err := p.review.LandPullRequest(ctx, pr, p.root)
	if err != nil {
		return nil, err
	}
	if result == LandAlreadyGone {
		p.splog.Debug("remote branch %s was already deleted", pr.Compare)
	}

	if err := SyncRoot(ctx, p.vcs, p.root, currentBranch, p.splog); err != nil {
		return nil, err
	}

	report := &LandReport{Landed: pr, Result: result}
	message := fmt.Sprintf(RebaseMessageTemplate, pr.Number)
	for i, dep := range deps {
		p.splog.Info("Updating %s", dep)

		if outcome, rebaseErr := p.vcs.RebaseOnto(ctx, p.root, landedTip, dep.Compare); outcome == git.RebaseConflict {
			if abortErr := p.vcs.AbortRebase(ctx); abortErr != nil {
				p.splog.Debug("rebase abort failed: %v", abortErr)
			}
			return report, &prmanerrors.RebaseFailedError{
				Branch:    dep.Compare,
				Landed:    pr.Number,
				Rebased:   compareBranches(report.Rebased),
				Remaining: compareBranches(deps[i+1:]),
				Err:       rebaseErr,
			}
		}

		// A dependent with no commits of its own now sits on the root tip,
		// whose commit must not be rewritten.
		onRoot, err := p.sameRevision(dep.Compare, p.root)
		if err != nil {
			return report, err
		}
		if onRoot {
			p.splog.Debug("%s has no commits above #%d, leaving the message alone", dep.Compare, pr.Number)
		} else if err := p.vcs.AmendTopCommitMessage(ctx, message); err != nil {
			return report, err
		}
		if err := p.vcs.ForcePush(ctx, dep.Compare); err != nil {
			return report, err
		}
		report.Rebased = append(report.Rebased, dep)
	}

	if err := p.vcs.Checkout(ctx, p.root); err != nil {
		return report, err
	}
	return report, nil
}

func (p *RebasePropagator) sameRevision(a, b string) (bool, error) {
	revA, err := p.vcs.Revision(a)
	if err != nil {
		return false, fmt.Errorf("failed to resolve %s: %w", a, err)
	}
	revB, err := p.vcs.Revision(b)
	if err != nil {
		return false, fmt.Errorf("failed to resolve %s: %w", b, err)
	}
	return revA == revB, nil
}

func compareBranches(prs []PullRequest) []string {
	branches := make([]string, len(prs))
	for i, pr := range prs {
		branches[i] = pr.Compare
	}
	return branches
}
