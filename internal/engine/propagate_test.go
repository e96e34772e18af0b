package engine_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"prman.dev/prman/internal/engine"
	prmanerrors "prman.dev/prman/internal/errors"
	"prman.dev/prman/internal/output"
	"prman.dev/prman/testhelpers"
)

func quietSplog() *output.Splog {
	return output.NewSplogWithWriter(io.Discard, false)
}

// newPropagationStack builds #1 main <- feat1, #2 feat1 <- feat2, #3 main <- feat3
// with a new commit on the remote main waiting to be propagated.
func newPropagationStack() (*testhelpers.FakeVCS, []engine.PullRequest) {
	vcs := testhelpers.NewFakeVCS("main")
	vcs.AddBranch("feat1", "main", "f1")
	vcs.AddBranch("feat2", "feat1", "f2")
	vcs.AddBranch("feat3", "main", "f3")
	vcs.CommitRemote("main", "upstream")

	return vcs, []engine.PullRequest{
		pr(1, "main", "feat1"),
		pr(2, "feat1", "feat2"),
		pr(3, "main", "feat3"),
	}
}

func TestSchedulerStart(t *testing.T) {
	t.Run("propagates root changes down the whole tree", func(t *testing.T) {
		vcs, prs := newPropagationStack()
		store := &testhelpers.MemoryCheckpointStore{}
		scheduler := engine.NewScheduler(vcs, store, "main", quietSplog())

		result, err := scheduler.Start(context.Background(), prs)
		require.NoError(t, err)
		require.Equal(t, engine.PropagationCompleted, result.Status)
		require.Equal(t, []int{3, 1, 2}, numbers(result.Propagated))
		require.Nil(t, result.Paused)

		for _, branch := range []string{"feat1", "feat2", "feat3"} {
			require.Contains(t, vcs.Commits[branch], "upstream", "%s should contain the new root commit", branch)
			require.Equal(t, vcs.Commits[branch], vcs.Remote[branch], "%s should be pushed", branch)
		}
		require.Equal(t, "main", vcs.Current)
		require.Zero(t, store.Saves)
	})

	t.Run("writes merge messages naming the base", func(t *testing.T) {
		vcs, prs := newPropagationStack()
		scheduler := engine.NewScheduler(vcs, &testhelpers.MemoryCheckpointStore{}, "main", quietSplog())

		_, err := scheduler.Start(context.Background(), prs)
		require.NoError(t, err)
		require.Contains(t, vcs.Calls, "merge main into feat1: Propagate changes from main via prman")
		require.Contains(t, vcs.Calls, "merge feat1 into feat2: Propagate changes from #1 via prman")
	})

	t.Run("checks every branch against the remote before the first checkout", func(t *testing.T) {
		vcs, prs := newPropagationStack()
		scheduler := engine.NewScheduler(vcs, &testhelpers.MemoryCheckpointStore{}, "main", quietSplog())

		_, err := scheduler.Start(context.Background(), prs)
		require.NoError(t, err)
		require.Equal(t, []string{
			"push --dry-run feat3",
			"push --dry-run feat1",
			"push --dry-run feat2",
			"pull main",
			"checkout feat3",
		}, vcs.Calls[:5])
	})

	t.Run("rejects diverged branches without touching the tree", func(t *testing.T) {
		vcs, prs := newPropagationStack()
		vcs.CommitLocal("feat2", "unpushed")
		vcs.CommitLocal("feat3", "unpushed")
		scheduler := engine.NewScheduler(vcs, &testhelpers.MemoryCheckpointStore{}, "main", quietSplog())

		_, err := scheduler.Start(context.Background(), prs)
		require.ErrorIs(t, err, prmanerrors.ErrBranchDiverged)

		var divergedErr *prmanerrors.BranchesDivergedError
		require.True(t, errors.As(err, &divergedErr))
		require.Equal(t, []string{"feat3", "feat2"}, divergedErr.Branches)
		require.Zero(t, vcs.CheckoutCount())
		require.NotContains(t, vcs.Calls, "pull main")
	})

	t.Run("rejects a fresh run while a checkpoint is pending", func(t *testing.T) {
		vcs, prs := newPropagationStack()
		store := &testhelpers.MemoryCheckpointStore{State: &engine.PropagationState{}}
		scheduler := engine.NewScheduler(vcs, store, "main", quietSplog())

		_, err := scheduler.Start(context.Background(), prs)
		require.ErrorIs(t, err, prmanerrors.ErrPendingOperation)
		require.Empty(t, vcs.Calls)
		require.NotNil(t, store.State)
	})

	t.Run("rejects a graph that is not a tree before touching the repository", func(t *testing.T) {
		vcs, _ := newPropagationStack()
		scheduler := engine.NewScheduler(vcs, &testhelpers.MemoryCheckpointStore{}, "main", quietSplog())

		_, err := scheduler.Start(context.Background(), []engine.PullRequest{
			pr(1, "main", "feat1"),
			pr(2, "feat1", "feat1"),
		})
		require.ErrorIs(t, err, prmanerrors.ErrNotArborescence)
		require.Empty(t, vcs.Calls)
	})

	t.Run("fails on a pull request based on a local branch without a pull request", func(t *testing.T) {
		vcs, prs := newPropagationStack()
		vcs.AddBranch("develop", "main", "d1")
		vcs.AddBranch("feat5", "develop", "f5")
		scheduler := engine.NewScheduler(vcs, &testhelpers.MemoryCheckpointStore{}, "main", quietSplog())

		_, err := scheduler.Start(context.Background(), append(prs, pr(5, "develop", "feat5")))
		require.ErrorIs(t, err, prmanerrors.ErrNotArborescence)
		require.ErrorContains(t, err, "develop")
		require.Empty(t, vcs.Calls)
	})

	t.Run("fetches the root when started from another branch and returns there", func(t *testing.T) {
		vcs, prs := newPropagationStack()
		vcs.Current = "feat2"
		scheduler := engine.NewScheduler(vcs, &testhelpers.MemoryCheckpointStore{}, "main", quietSplog())

		_, err := scheduler.Start(context.Background(), prs)
		require.NoError(t, err)
		require.Contains(t, vcs.Calls, "fetch main")
		require.NotContains(t, vcs.Calls, "pull main")
		require.Equal(t, "feat2", vcs.Current)
	})

	t.Run("fatal push aborts without a checkpoint", func(t *testing.T) {
		vcs, prs := newPropagationStack()
		vcs.PushErrors["feat1"] = errors.New("remote rejected")
		store := &testhelpers.MemoryCheckpointStore{}
		scheduler := engine.NewScheduler(vcs, store, "main", quietSplog())

		_, err := scheduler.Start(context.Background(), prs)
		require.EqualError(t, err, "remote rejected")
		require.Zero(t, store.Saves)
		require.Nil(t, store.State)
		require.NotContains(t, vcs.Calls, "checkout feat2")
	})

	t.Run("fatal checkout aborts without a checkpoint", func(t *testing.T) {
		vcs, prs := newPropagationStack()
		vcs.CheckoutErrors["feat3"] = errors.New("would be overwritten")
		store := &testhelpers.MemoryCheckpointStore{}
		scheduler := engine.NewScheduler(vcs, store, "main", quietSplog())

		_, err := scheduler.Start(context.Background(), prs)
		require.Error(t, err)
		require.Zero(t, store.Saves)
	})
}

func TestSchedulerPauseAndResume(t *testing.T) {
	t.Run("pauses on a merge conflict and saves the remaining queue", func(t *testing.T) {
		vcs, prs := newPropagationStack()
		vcs.MergeConflicts["feat1"] = true
		store := &testhelpers.MemoryCheckpointStore{}
		scheduler := engine.NewScheduler(vcs, store, "main", quietSplog())

		result, err := scheduler.Start(context.Background(), prs)
		require.NoError(t, err)
		require.Equal(t, engine.PropagationPaused, result.Status)
		require.Equal(t, 1, result.Paused.Number)
		require.Equal(t, 2, result.Remaining)
		require.Equal(t, []int{3}, numbers(result.Propagated))

		require.Equal(t, 1, store.Saves)
		require.Equal(t, []int{1, 2}, numbers(store.State.RemainingQueue))
		require.Equal(t, "main", store.State.InitialBranch)
		require.NotEmpty(t, store.State.RootRef)
		require.Equal(t, map[string]int{"feat1": 1, "feat2": 2, "feat3": 3}, store.State.BranchToPrNumber)
		require.NotContains(t, vcs.Calls, "push feat1")
		require.Equal(t, "feat1", vcs.Current)
	})

	t.Run("resumed run ends in the same state as an uninterrupted run", func(t *testing.T) {
		straight, prs := newPropagationStack()
		_, err := engine.NewScheduler(straight, &testhelpers.MemoryCheckpointStore{}, "main", quietSplog()).
			Start(context.Background(), prs)
		require.NoError(t, err)

		for _, conflicted := range []string{"feat3", "feat1", "feat2"} {
			t.Run("paused at "+conflicted, func(t *testing.T) {
				vcs, prs := newPropagationStack()
				vcs.MergeConflicts[conflicted] = true
				store := &testhelpers.MemoryCheckpointStore{}
				scheduler := engine.NewScheduler(vcs, store, "main", quietSplog())

				result, err := scheduler.Start(context.Background(), prs)
				require.NoError(t, err)
				require.Equal(t, engine.PropagationPaused, result.Status)

				vcs.ResolveMerge()

				result, err = scheduler.Resume(context.Background())
				require.NoError(t, err)
				require.Equal(t, engine.PropagationCompleted, result.Status)

				require.Equal(t, straight.Commits, vcs.Commits)
				require.Equal(t, straight.Remote, vcs.Remote)
				require.Equal(t, "main", vcs.Current)
			})
		}
	})

	t.Run("resume does not sync the root again", func(t *testing.T) {
		vcs, prs := newPropagationStack()
		vcs.MergeConflicts["feat2"] = true
		scheduler := engine.NewScheduler(vcs, &testhelpers.MemoryCheckpointStore{}, "main", quietSplog())

		_, err := scheduler.Start(context.Background(), prs)
		require.NoError(t, err)
		vcs.ResolveMerge()
		vcs.Calls = nil

		_, err = scheduler.Resume(context.Background())
		require.NoError(t, err)
		require.Equal(t, "checkout feat2", vcs.Calls[0])
		require.NotContains(t, vcs.Calls, "pull main")
		require.NotContains(t, vcs.Calls, "push --dry-run feat2")
	})

	t.Run("checkpoint is consumed exactly once", func(t *testing.T) {
		vcs, prs := newPropagationStack()
		vcs.MergeConflicts["feat2"] = true
		store := &testhelpers.MemoryCheckpointStore{}
		scheduler := engine.NewScheduler(vcs, store, "main", quietSplog())

		_, err := scheduler.Start(context.Background(), prs)
		require.NoError(t, err)
		vcs.ResolveMerge()

		_, err = scheduler.Resume(context.Background())
		require.NoError(t, err)
		require.Equal(t, 1, store.Loads)
		require.Equal(t, 1, store.Clears)

		vcs.Calls = nil
		_, err = scheduler.Resume(context.Background())
		require.ErrorIs(t, err, prmanerrors.ErrNothingPending)
		require.Empty(t, vcs.Calls)
		require.Equal(t, 1, store.Loads)
	})

	t.Run("resume without a checkpoint reports nothing pending", func(t *testing.T) {
		vcs, _ := newPropagationStack()
		scheduler := engine.NewScheduler(vcs, &testhelpers.MemoryCheckpointStore{}, "main", quietSplog())

		_, err := scheduler.Resume(context.Background())
		require.ErrorIs(t, err, prmanerrors.ErrNothingPending)
		require.True(t, prmanerrors.IsValidation(err))
		require.Empty(t, vcs.Calls)
	})

	t.Run("a second conflict after resume saves a new checkpoint", func(t *testing.T) {
		vcs, prs := newPropagationStack()
		vcs.MergeConflicts["feat1"] = true
		store := &testhelpers.MemoryCheckpointStore{}
		scheduler := engine.NewScheduler(vcs, store, "main", quietSplog())

		_, err := scheduler.Start(context.Background(), prs)
		require.NoError(t, err)
		vcs.ResolveMerge()
		vcs.MergeConflicts["feat2"] = true

		result, err := scheduler.Resume(context.Background())
		require.NoError(t, err)
		require.Equal(t, engine.PropagationPaused, result.Status)
		require.Equal(t, 2, result.Paused.Number)
		require.Equal(t, []int{2}, numbers(store.State.RemainingQueue))
		require.Equal(t, "main", store.State.InitialBranch)
	})
}
