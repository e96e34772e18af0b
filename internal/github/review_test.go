package github_test

import (
	"context"
	"io"
	"net/http"
	"testing"

	gogithub "github.com/google/go-github/v62/github"
	"github.com/stretchr/testify/require"

	"prman.dev/prman/internal/engine"
	"prman.dev/prman/internal/github"
	"prman.dev/prman/internal/output"
	"prman.dev/prman/testhelpers"
)

func newReview(t *testing.T, config *testhelpers.MockGitHubServerConfig, mergeMethod string) *github.Review {
	client, owner, repo := testhelpers.NewMockGitHubClient(t, config)
	return github.NewReview(client, owner, repo, mergeMethod, output.NewSplogWithWriter(io.Discard, false))
}

func stackedConfig() *testhelpers.MockGitHubServerConfig {
	config := testhelpers.NewMockGitHubServerConfig()
	for _, data := range testhelpers.StackedPRData() {
		config.AddPR(data)
	}
	return config
}

func TestListOpenPullRequests(t *testing.T) {
	t.Run("returns pull requests between known branches", func(t *testing.T) {
		review := newReview(t, stackedConfig(), "squash")

		prs, err := review.ListOpenPullRequests(context.Background(), map[string]bool{
			"main": true, "feat1": true, "feat2": true, "feat3": true,
		})
		require.NoError(t, err)
		require.Equal(t, []engine.PullRequest{
			{Number: 1, Base: "main", Compare: "feat1", URL: "https://github.com/owner/repo/pull/1", Title: "Feature one"},
			{Number: 2, Base: "feat1", Compare: "feat2", URL: "https://github.com/owner/repo/pull/2", Title: "Feature two"},
			{Number: 3, Base: "main", Compare: "feat3", URL: "https://github.com/owner/repo/pull/3", Title: "Feature three"},
		}, prs)
	})

	t.Run("skips pull requests whose branches are not checked out", func(t *testing.T) {
		review := newReview(t, stackedConfig(), "squash")

		prs, err := review.ListOpenPullRequests(context.Background(), map[string]bool{
			"main": true, "feat2": true, "feat3": true,
		})
		require.NoError(t, err)
		require.Equal(t, []int{3}, engine.Numbers(prs))
	})

	t.Run("follows pagination", func(t *testing.T) {
		config := testhelpers.NewMockGitHubServerConfig()
		config.PageSize = 2
		known := map[string]bool{"main": true}
		for i := 1; i <= 5; i++ {
			head := "feat" + string(rune('0'+i))
			known[head] = true
			config.AddPR(testhelpers.SamplePRData{Number: i, Title: head, Head: head, Base: "main"})
		}
		review := newReview(t, config, "squash")

		prs, err := review.ListOpenPullRequests(context.Background(), known)
		require.NoError(t, err)
		require.Equal(t, []int{1, 2, 3, 4, 5}, engine.Numbers(prs))
	})

	t.Run("ignores closed pull requests", func(t *testing.T) {
		config := stackedConfig()
		config.PRs[3].State = gogithub.String("closed")
		review := newReview(t, config, "squash")

		prs, err := review.ListOpenPullRequests(context.Background(), map[string]bool{
			"main": true, "feat1": true, "feat2": true, "feat3": true,
		})
		require.NoError(t, err)
		require.Equal(t, []int{1, 2}, engine.Numbers(prs))
	})
}

func TestCreatePullRequest(t *testing.T) {
	config := stackedConfig()
	review := newReview(t, config, "squash")

	url, err := review.CreatePullRequest(context.Background(), engine.CreateRequest{
		Head:  "feat4",
		Base:  "feat2",
		Title: "Feature four",
		Body:  "Adds four\n\ndepends on #2",
		Draft: true,
	})
	require.NoError(t, err)
	require.Equal(t, "https://github.com/owner/repo/pull/4", url)

	require.Len(t, config.CreatedPRs, 1)
	created := config.CreatedPRs[0]
	require.Equal(t, "feat4", created.GetHead().GetRef())
	require.Equal(t, "feat2", created.GetBase().GetRef())
	require.Equal(t, "Feature four", created.GetTitle())
	require.Equal(t, "Adds four\n\ndepends on #2", created.GetBody())
	require.True(t, created.GetDraft())
}

func TestLandPullRequest(t *testing.T) {
	feat1 := engine.PullRequest{Number: 1, Base: "main", Compare: "feat1", Title: "Feature one"}

	t.Run("merges, retargets dependents and deletes the branch", func(t *testing.T) {
		config := stackedConfig()
		config.AddPR(testhelpers.SamplePRData{Number: 4, Title: "Feature four", Head: "feat4", Base: "feat1"})
		review := newReview(t, config, "squash")

		result, err := review.LandPullRequest(context.Background(), feat1, "main")
		require.NoError(t, err)
		require.Equal(t, engine.LandDone, result)

		require.Equal(t, map[int]string{1: "squash"}, config.MergedPRs)
		require.Equal(t, map[int]string{2: "main", 4: "main"}, config.RetargetedPRs)
		require.Equal(t, []string{"heads/feat1"}, config.DeletedRefs)
		require.Equal(t, "main", config.PRs[2].GetBase().GetRef())
	})

	t.Run("uses the configured merge method", func(t *testing.T) {
		config := stackedConfig()
		review := newReview(t, config, "rebase")

		_, err := review.LandPullRequest(context.Background(), feat1, "main")
		require.NoError(t, err)
		require.Equal(t, "rebase", config.MergedPRs[1])
	})

	t.Run("treats an already deleted branch as landed", func(t *testing.T) {
		config := stackedConfig()
		config.MissingRefs["heads/feat1"] = true
		review := newReview(t, config, "squash")

		result, err := review.LandPullRequest(context.Background(), feat1, "main")
		require.NoError(t, err)
		require.Equal(t, engine.LandAlreadyGone, result)
		require.Equal(t, "main", config.RetargetedPRs[2])
	})

	t.Run("reports a refused merge without touching dependents", func(t *testing.T) {
		config := stackedConfig()
		config.MergeStatus = http.StatusMethodNotAllowed
		review := newReview(t, config, "squash")

		_, err := review.LandPullRequest(context.Background(), feat1, "main")
		require.ErrorContains(t, err, "failed to merge #1")
		require.Empty(t, config.RetargetedPRs)
		require.Empty(t, config.DeletedRefs)
	})
}
