package engine

import "fmt"

// PullRequest is an open pull request whose base and compare branches exist locally
type PullRequest struct {
	Number  int    `json:"number"`
	Base    string `json:"base"`
	Compare string `json:"compare"`
	URL     string `json:"url"`
	Title   string `json:"title"`
}

func (pr PullRequest) String() string {
	return fmt.Sprintf("%s #%d: %s <- %s (%s)", pr.Title, pr.Number, pr.Base, pr.Compare, pr.URL)
}

// PropagationStatus is the terminal state of a scheduler run
type PropagationStatus int

const (
	// PropagationCompleted indicates every queued pull request was merged and pushed
	PropagationCompleted PropagationStatus = iota
	// PropagationPaused indicates a merge stopped for manual resolution and a checkpoint was saved
	PropagationPaused
)

func (s PropagationStatus) String() string {
	switch s {
	case PropagationCompleted:
		return "completed"
	case PropagationPaused:
		return "paused"
	default:
		return "unknown"
	}
}

// PropagationResult describes how a scheduler run ended
type PropagationResult struct {
	Status PropagationStatus
	// Propagated lists the pull requests merged and pushed during this run, in order
	Propagated []PullRequest
	// Paused is the pull request whose merge needs resolution; nil unless Status is PropagationPaused
	Paused *PullRequest
	// Remaining counts the queued pull requests saved in the checkpoint, including Paused
	Remaining int
}

// LandResult represents the result of landing a pull request on the review platform
type LandResult int

const (
	// LandDone indicates the pull request was merged and its remote branch deleted
	LandDone LandResult = iota
	// LandAlreadyGone indicates the remote branch no longer existed
	LandAlreadyGone
)

// LandReport describes a completed landing
type LandReport struct {
	Landed  PullRequest
	Result  LandResult
	Rebased []PullRequest
}

// CreateRequest holds the fields of a pull request to open
type CreateRequest struct {
	Head  string
	Base  string
	Title string
	Body  string
	Draft bool
}
