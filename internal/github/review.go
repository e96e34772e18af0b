package github

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/go-github/v62/github"

	"prman.dev/prman/internal/engine"
	"prman.dev/prman/internal/output"
)

const referenceMissingMessage = "Reference does not exist"

// Review implements engine.CodeReview for one GitHub repository
type Review struct {
	client      *github.Client
	owner       string
	repo        string
	mergeMethod string
	splog       *output.Splog
}

// NewReview creates a Review. mergeMethod is one of squash, merge or rebase.
func NewReview(client *github.Client, owner, repo, mergeMethod string, splog *output.Splog) *Review {
	if mergeMethod == "" {
		mergeMethod = "squash"
	}
	return &Review{
		client:      client,
		owner:       owner,
		repo:        repo,
		mergeMethod: mergeMethod,
		splog:       splog,
	}
}

// ListOpenPullRequests returns every open pull request whose base and compare branches are both known
func (r *Review) ListOpenPullRequests(ctx context.Context, knownBranches map[string]bool) ([]engine.PullRequest, error) {
	prs, err := r.listOpen(ctx, "")
	if err != nil {
		return nil, err
	}

	var result []engine.PullRequest
	for _, pr := range prs {
		base := pr.GetBase().GetRef()
		compare := pr.GetHead().GetRef()
		if !knownBranches[base] || !knownBranches[compare] {
			r.splog.Debug("skipping #%d: %s <- %s is not checked out", pr.GetNumber(), base, compare)
			continue
		}
		result = append(result, engine.PullRequest{
			Number:  pr.GetNumber(),
			Base:    base,
			Compare: compare,
			URL:     pr.GetHTMLURL(),
			Title:   pr.GetTitle(),
		})
	}
	return result, nil
}

func (r *Review) listOpen(ctx context.Context, base string) ([]*github.PullRequest, error) {
	opts := &github.PullRequestListOptions{
		State:       "open",
		Base:        base,
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var all []*github.PullRequest
	for {
		r.splog.Debug("listing open pull requests of %s/%s (page %d)", r.owner, r.repo, opts.Page)
		prs, resp, err := r.client.PullRequests.List(ctx, r.owner, r.repo, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list pull requests: %w", err)
		}
		all = append(all, prs...)
		if resp == nil || resp.NextPage == 0 {
			return all, nil
		}
		opts.Page = resp.NextPage
	}
}

// CreatePullRequest opens a pull request and returns its URL
func (r *Review) CreatePullRequest(ctx context.Context, req engine.CreateRequest) (string, error) {
	newPR := &github.NewPullRequest{
		Title: github.String(req.Title),
		Head:  github.String(req.Head),
		Base:  github.String(req.Base),
		Draft: github.Bool(req.Draft),
	}
	if req.Body != "" {
		newPR.Body = github.String(req.Body)
	}

	r.splog.Debug("creating pull request %s <- %s", req.Base, req.Head)
	created, _, err := r.client.PullRequests.Create(ctx, r.owner, r.repo, newPR)
	if err != nil {
		return "", fmt.Errorf("failed to create pull request: %w", err)
	}
	return created.GetHTMLURL(), nil
}

// LandPullRequest merges pr, points the pull requests based on it at root and
// deletes its remote branch. A branch that is already gone is not an error.
func (r *Review) LandPullRequest(ctx context.Context, pr engine.PullRequest, root string) (engine.LandResult, error) {
	r.splog.Debug("merging #%d with method %s", pr.Number, r.mergeMethod)
	_, _, err := r.client.PullRequests.Merge(ctx, r.owner, r.repo, pr.Number, "", &github.PullRequestOptions{
		CommitTitle: fmt.Sprintf("%s (#%d)", pr.Title, pr.Number),
		MergeMethod: r.mergeMethod,
	})
	if err != nil {
		return engine.LandDone, fmt.Errorf("failed to merge #%d: %w", pr.Number, err)
	}

	// GitHub closes pull requests whose base branch is deleted, so dependents move first.
	dependents, err := r.listOpen(ctx, pr.Compare)
	if err != nil {
		return engine.LandDone, err
	}
	for _, dep := range dependents {
		r.splog.Debug("retargeting #%d to %s", dep.GetNumber(), root)
		_, _, err := r.client.PullRequests.Edit(ctx, r.owner, r.repo, dep.GetNumber(), &github.PullRequest{
			Base: &github.PullRequestBranch{Ref: github.String(root)},
		})
		if err != nil {
			return engine.LandDone, fmt.Errorf("failed to retarget #%d to %s: %w", dep.GetNumber(), root, err)
		}
	}

	r.splog.Debug("deleting remote branch %s", pr.Compare)
	if _, err := r.client.Git.DeleteRef(ctx, r.owner, r.repo, "heads/"+pr.Compare); err != nil {
		if isReferenceMissing(err) {
			return engine.LandAlreadyGone, nil
		}
		return engine.LandDone, fmt.Errorf("failed to delete remote branch %s: %w", pr.Compare, err)
	}
	return engine.LandDone, nil
}

func isReferenceMissing(err error) bool {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) {
		return strings.Contains(ghErr.Message, referenceMissingMessage)
	}
	return strings.Contains(err.Error(), referenceMissingMessage)
}

var _ engine.CodeReview = (*Review)(nil)
