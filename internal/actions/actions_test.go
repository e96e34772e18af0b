package actions

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"prman.dev/prman/internal/config"
	"prman.dev/prman/internal/engine"
	"prman.dev/prman/internal/git"
	"prman.dev/prman/internal/output"
	"prman.dev/prman/internal/runtime"
	"prman.dev/prman/testhelpers"
)

type testEnv struct {
	rc     *runtime.Context
	vcs    *testhelpers.FakeVCS
	review *testhelpers.FakeReview
	store  *testhelpers.MemoryCheckpointStore
	out    *bytes.Buffer
}

// newTestEnv builds #1 main <- feat1, #2 feat1 <- feat2, #3 main <- feat3 with
// feat1 checked out and a new commit waiting on the remote main
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	lipgloss.SetColorProfile(termenv.Ascii)

	vcs := testhelpers.NewFakeVCS("main")
	vcs.AddBranch("feat1", "main", "f1")
	vcs.AddBranch("feat2", "feat1", "f2")
	vcs.AddBranch("feat3", "main", "f3")
	vcs.CommitRemote("main", "upstream")
	vcs.Current = "feat1"
	vcs.Head = git.CommitInfo{Hash: "abc123", Title: "Add feature", Body: "Explains the feature"}

	review := &testhelpers.FakeReview{
		PRs: []engine.PullRequest{
			{Number: 1, Base: "main", Compare: "feat1", URL: "https://github.com/owner/repo/pull/1", Title: "Feature one"},
			{Number: 2, Base: "feat1", Compare: "feat2", URL: "https://github.com/owner/repo/pull/2", Title: "Feature two"},
			{Number: 3, Base: "main", Compare: "feat3", URL: "https://github.com/owner/repo/pull/3", Title: "Feature three"},
		},
		VCS: vcs,
	}
	store := &testhelpers.MemoryCheckpointStore{}
	out := &bytes.Buffer{}
	rc := runtime.NewContext(config.Default(), output.NewSplogWithWriter(out, false), t.TempDir(), "main", vcs, store, review)

	return &testEnv{rc: rc, vcs: vcs, review: review, store: store, out: out}
}
