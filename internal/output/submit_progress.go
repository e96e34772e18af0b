package output

// SubmitProgress prints the outcome of landing a pull request and rebasing
// its dependents, line by line
type SubmitProgress struct {
	splog     *Splog
	completed int
	failed    int
}

// NewSubmitProgress creates a new SubmitProgress
func NewSubmitProgress(splog *Splog) *SubmitProgress {
	return &SubmitProgress{splog: splog}
}

// Landed reports the merged pull request
func (p *SubmitProgress) Landed(prNumber int, branchName string, alreadyGone bool) {
	if alreadyGone {
		p.splog.Info("  ✓ %s merged as %s (remote branch was already deleted)", branchName, ColorPRNumber(prNumber))
		return
	}
	p.splog.Info("  ✓ %s merged as %s", branchName, ColorPRNumber(prNumber))
}

// Rebased reports a dependent moved onto the root branch and pushed
func (p *SubmitProgress) Rebased(branchName string) {
	p.completed++
	p.splog.Info("  ✓ %s rebased", ColorBranchName(branchName, false))
}

// Failed reports a dependent that could not be rebased
func (p *SubmitProgress) Failed(branchName string) {
	p.failed++
	p.splog.Info("  ✗ %s %s", ColorBranchName(branchName, false), ColorRed("could not be rebased"))
}

// Skipped reports a dependent left untouched after a failure
func (p *SubmitProgress) Skipped(branchName string) {
	p.splog.Info("  ⋯ %s %s", ColorBranchName(branchName, false), ColorDim("not rebased"))
}

// Complete prints the summary line
func (p *SubmitProgress) Complete() {
	p.splog.Newline()
	if p.failed > 0 {
		p.splog.Info("Rebased: %d, Failed: %d", p.completed, p.failed)
	} else if p.completed > 0 {
		p.splog.Info("✓ All %d dependents rebased", p.completed)
	}
}
