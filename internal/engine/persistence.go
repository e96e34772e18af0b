package engine

// PropagationState is the checkpoint of a paused propagation.
// It exists only between a paused merge and the next resume.
type PropagationState struct {
	// RootRef is the root branch tip captured when propagation started
	RootRef string `json:"rootRef"`
	// InitialBranch is the branch checked out when propagation started
	InitialBranch string `json:"initialBranch"`
	// RemainingQueue starts with the pull request whose merge paused
	RemainingQueue []PullRequest `json:"remainingQueue"`
	// BranchToPrNumber maps compare branches to pull request numbers for merge messages
	BranchToPrNumber map[string]int `json:"branchToPrNumber"`
}
