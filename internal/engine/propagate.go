package engine

import (
	"context"
	"fmt"

	prmanerrors "prman.dev/prman/internal/errors"
	"prman.dev/prman/internal/git"
	"prman.dev/prman/internal/output"
)

// MergeMessageTemplate is the message of every propagation merge commit.
// The placeholder is "#<n>" for a pull request base or the root branch name.
const MergeMessageTemplate = "Propagate changes from %s via prman"

// Scheduler replays merges down the dependency tree, one pull request at a time
type Scheduler struct {
	vcs   VersionControl
	store CheckpointStore
	root  string
	splog *output.Splog
}

// NewScheduler creates a new Scheduler for the given root branch
func NewScheduler(vcs VersionControl, store CheckpointStore, root string, splog *output.Splog) *Scheduler {
	return &Scheduler{vcs: vcs, store: store, root: root, splog: splog}
}

// Start runs a fresh propagation over prs.
// It refuses to start while a checkpoint exists, and validates the tree and the
// remote state of every branch before the first checkout.
func (s *Scheduler) Start(ctx context.Context, prs []PullRequest) (*PropagationResult, error) {
	pending, err := s.store.Exists()
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, prmanerrors.ErrPendingOperation
	}

	initialBranch, err := s.vcs.CurrentBranch()
	if err != nil {
		return nil, fmt.Errorf("failed to get current branch: %w", err)
	}

	sorted, err := SortPullRequests(s.root, prs)
	if err != nil {
		return nil, err
	}

	if err := NewSyncValidator(s.vcs).Validate(ctx, sorted); err != nil {
		return nil, err
	}

	if err := SyncRoot(ctx, s.vcs, s.root, initialBranch, s.splog); err != nil {
		return nil, err
	}

	rootRef, err := s.vcs.Revision(s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", s.root, err)
	}

	return s.run(ctx, PropagationState{
		RootRef:          rootRef,
		InitialBranch:    initialBranch,
		RemainingQueue:   sorted,
		BranchToPrNumber: BranchToPrNumber(prs),
	})
}

// Resume continues a paused propagation from its checkpoint.
// The checkpoint is cleared as soon as it is loaded, and the root is not synced again.
func (s *Scheduler) Resume(ctx context.Context) (*PropagationResult, error) {
	pending, err := s.store.Exists()
	if err != nil {
		return nil, err
	}
	if !pending {
		return nil, prmanerrors.ErrNothingPending
	}

	state, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	if err := s.store.Clear(); err != nil {
		return nil, err
	}

	return s.run(ctx, *state)
}

func (s *Scheduler) run(ctx context.Context, state PropagationState) (*PropagationResult, error) {
	result := &PropagationResult{Status: PropagationCompleted}
	queue := state.RemainingQueue

	for i, pr := range queue {
		s.splog.Newline()
		s.splog.Info("Evolving %s", pr)

		if err := s.vcs.Checkout(ctx, pr.Compare); err != nil {
			return nil, err
		}

		message := fmt.Sprintf(MergeMessageTemplate, s.describeBase(pr.Base, state.BranchToPrNumber))
		if s.vcs.MergeInto(ctx, pr.Base, message) == git.MergeConflict {
			paused := pr
			state.RemainingQueue = queue[i:]
			if err := s.store.Save(state); err != nil {
				return nil, fmt.Errorf("failed to save checkpoint: %w", err)
			}
			result.Status = PropagationPaused
			result.Paused = &paused
			result.Remaining = len(state.RemainingQueue)
			return result, nil
		}

		if err := s.vcs.Push(ctx, pr.Compare); err != nil {
			return nil, err
		}
		result.Propagated = append(result.Propagated, pr)
	}

	if state.InitialBranch != "" {
		if err := s.vcs.Checkout(ctx, state.InitialBranch); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (s *Scheduler) describeBase(base string, branchToPrNumber map[string]int) string {
	if base == s.root {
		return s.root
	}
	if number, ok := branchToPrNumber[base]; ok {
		return fmt.Sprintf("#%d", number)
	}
	return base
}

// SyncRoot fast-forwards the local root branch from the remote, pulling in
// place when the root is checked out.
func SyncRoot(ctx context.Context, vcs VersionControl, root, currentBranch string, splog *output.Splog) error {
	splog.Info("Fast-forwarding %s", root)
	if currentBranch == root {
		return vcs.PullRootInPlace(ctx, root)
	}
	return vcs.FetchRootInto(ctx, root)
}
