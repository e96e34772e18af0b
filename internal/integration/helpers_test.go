// Package integration runs propagation and landing against real git
// repositories with a bare origin.
package integration

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"prman.dev/prman/internal/config"
	"prman.dev/prman/internal/engine"
	"prman.dev/prman/internal/git"
	"prman.dev/prman/internal/output"
	"prman.dev/prman/testhelpers"
)

const mainBranchName = "main"

// stack is a local clone with #1 main <- feat1, #2 feat1 <- feat2 and
// #3 main <- feat3 pushed to origin, plus a second clone standing in for
// other developers and the review platform.
type stack struct {
	t        *testing.T
	scene    *testhelpers.Scene
	upstream *testhelpers.GitRepo
	vcs      engine.VersionControl
	store    *config.FileCheckpointStore
	prs      []engine.PullRequest
}

func newStack(t *testing.T) *stack {
	t.Helper()
	scene := testhelpers.NewScene(t, testhelpers.RemoteSceneSetup)
	repo := scene.Repo

	branch := func(name, base, change string) {
		require.NoError(t, repo.CheckoutBranch(base))
		require.NoError(t, repo.CreateAndCheckoutBranch(name))
		require.NoError(t, repo.CreateChangeAndCommit(change, name))
		require.NoError(t, repo.PushBranch("origin", name))
	}
	branch("feat1", mainBranchName, "feat1 change")
	branch("feat2", "feat1", "feat2 change")
	branch("feat3", mainBranchName, "feat3 change")
	require.NoError(t, repo.CheckoutBranch(mainBranchName))

	upstream, err := testhelpers.CloneGitRepo(scene.Remote, filepath.Join(t.TempDir(), "upstream"))
	require.NoError(t, err)

	gitRepo, err := git.OpenRepository(scene.Dir)
	require.NoError(t, err)
	splog := output.NewSplogWithWriter(io.Discard, false)

	return &stack{
		t:        t,
		scene:    scene,
		upstream: upstream,
		vcs:      engine.NewGitVersionControl(gitRepo, git.NewCommandRunner(scene.Dir, splog), "origin"),
		store:    config.NewFileCheckpointStore(scene.Dir, config.Default().CheckpointFile),
		prs: []engine.PullRequest{
			{Number: 1, Base: mainBranchName, Compare: "feat1", Title: "Feature one"},
			{Number: 2, Base: "feat1", Compare: "feat2", Title: "Feature two"},
			{Number: 3, Base: mainBranchName, Compare: "feat3", Title: "Feature three"},
		},
	}
}

func (s *stack) repo() *testhelpers.GitRepo {
	return s.scene.Repo
}

func (s *stack) splog() *output.Splog {
	return output.NewSplogWithWriter(io.Discard, false)
}

// pushUpstream commits a change to main from the other clone
func (s *stack) pushUpstream(text, prefix string) {
	s.t.Helper()
	require.NoError(s.t, s.upstream.CheckoutBranch(mainBranchName))
	require.NoError(s.t, s.upstream.RunGitCommand("pull", "--ff-only", "origin", mainBranchName))
	require.NoError(s.t, s.upstream.CreateChangeAndCommit(text, prefix))
	require.NoError(s.t, s.upstream.RunGitCommand("push", "origin", mainBranchName))
}

func (s *stack) rev(ref string) string {
	s.t.Helper()
	rev, err := s.repo().GetRevision(ref)
	require.NoError(s.t, err)
	return rev
}

func (s *stack) currentBranch() string {
	s.t.Helper()
	name, err := s.repo().CurrentBranchName()
	require.NoError(s.t, err)
	return name
}

func (s *stack) requirePushed(branches ...string) {
	s.t.Helper()
	require.NoError(s.t, s.repo().RunGitCommand("fetch", "origin"))
	for _, b := range branches {
		require.Equal(s.t, s.rev(b), s.rev("origin/"+b), "%s should match its remote", b)
	}
}

// resolveWith overwrites the conflicted file of prefix and commits the merge
func (s *stack) resolveWith(prefix, content string) {
	s.t.Helper()
	path := filepath.Join(s.scene.Dir, prefix+"_test.txt")
	require.NoError(s.t, os.WriteFile(path, []byte(content), 0600))
	require.NoError(s.t, s.repo().RunGitCommand("add", path))
	require.NoError(s.t, s.repo().RunGitCommand("commit", "--no-edit"))
}

// squashReview lands pull requests by squash-merging them on origin from the
// upstream clone and deleting the merged branch
type squashReview struct {
	upstream *testhelpers.GitRepo
	prs      []engine.PullRequest
}

func (r *squashReview) ListOpenPullRequests(_ context.Context, _ map[string]bool) ([]engine.PullRequest, error) {
	return r.prs, nil
}

func (r *squashReview) CreatePullRequest(_ context.Context, req engine.CreateRequest) (string, error) {
	return "", fmt.Errorf("cannot create %s", req.Head)
}

func (r *squashReview) LandPullRequest(_ context.Context, pr engine.PullRequest, root string) (engine.LandResult, error) {
	steps := [][]string{
		{"fetch", "origin"},
		{"checkout", root},
		{"pull", "--ff-only", "origin", root},
		{"merge", "--squash", "origin/" + pr.Compare},
		{"commit", "-m", fmt.Sprintf("%s (#%d)", pr.Title, pr.Number)},
		{"push", "origin", root},
		{"push", "origin", "--delete", pr.Compare},
	}
	for _, args := range steps {
		if err := r.upstream.RunGitCommand(args...); err != nil {
			return engine.LandDone, err
		}
	}
	return engine.LandDone, nil
}
