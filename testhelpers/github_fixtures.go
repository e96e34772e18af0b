package testhelpers

import (
	"fmt"

	"github.com/google/go-github/v62/github"
)

// SamplePRData provides common PR data for testing
type SamplePRData struct {
	Number int
	Title  string
	Body   string
	Head   string
	Base   string
}

// NewSamplePullRequest creates an open github.PullRequest from sample data
func NewSamplePullRequest(data SamplePRData) *github.PullRequest {
	return &github.PullRequest{
		Number:  github.Int(data.Number),
		Title:   github.String(data.Title),
		Body:    github.String(data.Body),
		Head:    &github.PullRequestBranch{Ref: github.String(data.Head)},
		Base:    &github.PullRequestBranch{Ref: github.String(data.Base)},
		HTMLURL: github.String(fmt.Sprintf("https://github.com/owner/repo/pull/%d", data.Number)),
		State:   github.String("open"),
	}
}

// StackedPRData returns the stack #1 main <- feat1, #2 feat1 <- feat2, #3 main <- feat3
func StackedPRData() []SamplePRData {
	return []SamplePRData{
		{Number: 1, Title: "Feature one", Head: "feat1", Base: "main"},
		{Number: 2, Title: "Feature two", Head: "feat2", Base: "feat1"},
		{Number: 3, Title: "Feature three", Head: "feat3", Base: "main"},
	}
}
