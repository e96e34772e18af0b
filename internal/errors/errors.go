// Package errors provides sentinel errors and custom error types for prman.
// Use errors.Is() and errors.As() to check for specific error types.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common conditions
var (
	// ErrNotRepository indicates the working directory is not inside a git repository
	ErrNotRepository = errors.New("not a git repository")

	// ErrDirtyWorkingTree indicates uncommitted changes in the working tree
	ErrDirtyWorkingTree = errors.New("working tree is dirty")

	// ErrNothingPending indicates a resume was requested without a saved checkpoint
	ErrNothingPending = errors.New("no evolve in progress")

	// ErrPendingOperation indicates a fresh propagation was requested while a checkpoint exists
	ErrPendingOperation = errors.New("pending evolve operation; run `prman evolve --continue` instead")

	// ErrNotArborescence indicates the pull request graph is not a tree rooted at the root branch
	ErrNotArborescence = errors.New("pull requests do not form a tree rooted at the root branch")

	// ErrPropagationPaused indicates propagation stopped on a merge conflict and was checkpointed
	ErrPropagationPaused = errors.New("propagation paused on merge conflict")

	// ErrRepositoryLocked indicates another prman process holds the repository lock
	ErrRepositoryLocked = errors.New("repository is locked by another prman process")

	// ErrBranchDiverged indicates a branch has local commits that are not on the remote
	ErrBranchDiverged = errors.New("branch is not up-to-date with its remote")

	// ErrUnknownPullRequest indicates a pull request reference could not be resolved
	ErrUnknownPullRequest = errors.New("unknown pull request")

	// ErrNotRootBased indicates a pull request that must target the root branch does not
	ErrNotRootBased = errors.New("pull request is not based on the root branch")

	// ErrRebaseFailed indicates a dependent could not be rebased after landing
	ErrRebaseFailed = errors.New("rebase after landing failed")
)

// IsValidation reports whether err belongs to the validation family: the
// operation was refused before anything in the repository was mutated.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrNotRepository,
		ErrDirtyWorkingTree,
		ErrNothingPending,
		ErrPendingOperation,
		ErrNotArborescence,
		ErrRepositoryLocked,
		ErrBranchDiverged,
		ErrUnknownPullRequest,
		ErrNotRootBased,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// BranchesDivergedError lists branches that failed the remote sync check
type BranchesDivergedError struct {
	Branches []string
}

func (e *BranchesDivergedError) Error() string {
	if len(e.Branches) == 1 {
		return fmt.Sprintf("%s is not up-to-date with its remote", e.Branches[0])
	}
	return fmt.Sprintf("branches are not up-to-date with their remotes: %s", strings.Join(e.Branches, ", "))
}

// Is returns true if the target error is ErrBranchDiverged
func (e *BranchesDivergedError) Is(target error) bool {
	return target == ErrBranchDiverged
}

// NewBranchesDivergedError creates a new BranchesDivergedError
func NewBranchesDivergedError(branches []string) *BranchesDivergedError {
	return &BranchesDivergedError{Branches: branches}
}

// UnknownPullRequestError represents a reference that matches none of the open pull requests.
// Reference is already formatted for display ("#12", "branch feat1").
type UnknownPullRequestError struct {
	Reference string
	Known     []int
}

func (e *UnknownPullRequestError) Error() string {
	known := make([]string, len(e.Known))
	for i, n := range e.Known {
		known[i] = fmt.Sprintf("#%d", n)
	}
	return fmt.Sprintf("could not find %s among checked out PRs: %s", e.Reference, strings.Join(known, ", "))
}

// Is returns true if the target error is ErrUnknownPullRequest
func (e *UnknownPullRequestError) Is(target error) bool {
	return target == ErrUnknownPullRequest
}

// NewUnknownPullRequestError creates a new UnknownPullRequestError
func NewUnknownPullRequestError(reference string, known []int) *UnknownPullRequestError {
	return &UnknownPullRequestError{Reference: reference, Known: known}
}

// NotRootBasedError is returned when landing a pull request whose base is not the root branch
type NotRootBasedError struct {
	Number int
	Base   string
	Root   string
}

func (e *NotRootBasedError) Error() string {
	return fmt.Sprintf("#%d has base ref %s; only merging into %s is allowed", e.Number, e.Base, e.Root)
}

// Is returns true if the target error is ErrNotRootBased
func (e *NotRootBasedError) Is(target error) bool {
	return target == ErrNotRootBased
}

// NotArborescenceError names the branch at which the dependency graph stops being a tree
type NotArborescenceError struct {
	Branch string
	Reason string
}

func (e *NotArborescenceError) Error() string {
	return fmt.Sprintf("not an arborescence at %s: %s", e.Branch, e.Reason)
}

// Is returns true if the target error is ErrNotArborescence
func (e *NotArborescenceError) Is(target error) bool {
	return target == ErrNotArborescence
}

// NewNotArborescenceError creates a new NotArborescenceError
func NewNotArborescenceError(branch, reason string) *NotArborescenceError {
	return &NotArborescenceError{Branch: branch, Reason: reason}
}

// RebaseFailedError is returned when a dependent cannot be moved onto the new root.
// Rebased lists dependents that were already rebased and pushed.
type RebaseFailedError struct {
	Branch    string
	Landed    int
	Rebased   []string
	Remaining []string
	Err       error
}

func (e *RebaseFailedError) Error() string {
	msg := fmt.Sprintf("failed to rebase %s after #%d submission", e.Branch, e.Landed)
	if len(e.Rebased) > 0 {
		msg += fmt.Sprintf("\nalready rebased: %s", strings.Join(e.Rebased, ", "))
	}
	if len(e.Remaining) > 0 {
		msg += fmt.Sprintf("\nnot rebased: %s", strings.Join(e.Remaining, ", "))
	}
	if e.Err != nil {
		msg += fmt.Sprintf("\n%v", e.Err)
	}
	return msg
}

// Is returns true if the target error is ErrRebaseFailed
func (e *RebaseFailedError) Is(target error) bool {
	return target == ErrRebaseFailed
}

func (e *RebaseFailedError) Unwrap() error {
	return e.Err
}

// CommandError represents a failed external command (git or gh)
type CommandError struct {
	Command string
	Args    []string
	Stdout  string
	Stderr  string
	Err     error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("command failed: %s", e.Command)
	if len(e.Args) > 0 {
		msg += fmt.Sprintf(" %v", e.Args)
	}
	if e.Stderr != "" {
		msg += fmt.Sprintf("\nstderr: %s", e.Stderr)
	}
	if e.Stdout != "" {
		msg += fmt.Sprintf("\nstdout: %s", e.Stdout)
	}
	if e.Err != nil {
		msg += fmt.Sprintf("\n%v", e.Err)
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewCommandError creates a new CommandError
func NewCommandError(command string, args []string, stdout, stderr string, err error) *CommandError {
	return &CommandError{
		Command: command,
		Args:    args,
		Stdout:  stdout,
		Stderr:  stderr,
		Err:     err,
	}
}
