package testhelpers

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"slices"
	"strings"

	"prman.dev/prman/internal/engine"
	prmanerrors "prman.dev/prman/internal/errors"
	"prman.dev/prman/internal/git"
)

// FakeVCS is an in-memory engine.VersionControl. Each branch is a list of
// commit names; merges append the missing commits of the source followed by a
// merge commit named after the message. Every call is recorded in Calls.
type FakeVCS struct {
	Calls []string

	Current  string
	Commits  map[string][]string
	Remote   map[string][]string
	Clean    bool
	Head     git.CommitInfo
	Snapshot map[string][]string

	// MergeConflicts makes the next merge into the named branch stop for resolution
	MergeConflicts map[string]bool
	// RebaseConflicts makes rebasing the named branch fail
	RebaseConflicts map[string]bool
	// PushErrors makes pushing the named branch fail
	PushErrors map[string]error
	// CheckoutErrors makes checking out the named branch fail
	CheckoutErrors map[string]error

	pendingMerge *pendingMerge
	rebasing     bool
}

type pendingMerge struct {
	branch  string
	source  string
	message string
}

// NewFakeVCS creates a FakeVCS with root checked out and in sync with the remote
func NewFakeVCS(root string) *FakeVCS {
	f := &FakeVCS{
		Current:         root,
		Commits:         map[string][]string{},
		Remote:          map[string][]string{},
		Clean:           true,
		Snapshot:        map[string][]string{},
		MergeConflicts:  map[string]bool{},
		RebaseConflicts: map[string]bool{},
		PushErrors:      map[string]error{},
		CheckoutErrors:  map[string]error{},
	}
	f.AddBranch(root, "", "root-initial")
	return f
}

// AddBranch creates branch from base with extra commits and pushes it
func (f *FakeVCS) AddBranch(branch, base string, commits ...string) {
	history := slices.Clone(f.Commits[base])
	history = append(history, commits...)
	f.Commits[branch] = history
	f.Remote[branch] = slices.Clone(history)
}

// CommitLocal adds commits to branch without pushing them
func (f *FakeVCS) CommitLocal(branch string, commits ...string) {
	f.Commits[branch] = append(f.Commits[branch], commits...)
}

// CommitRemote adds commits to the remote copy of branch only
func (f *FakeVCS) CommitRemote(branch string, commits ...string) {
	f.Remote[branch] = append(f.Remote[branch], commits...)
}

// ResolveMerge completes a merge that stopped on a conflict, as an operator would
func (f *FakeVCS) ResolveMerge() {
	if f.pendingMerge == nil {
		return
	}
	f.applyMerge(f.pendingMerge.branch, f.pendingMerge.source, f.pendingMerge.message)
	f.pendingMerge = nil
}

// CheckoutCount returns how many checkouts were recorded
func (f *FakeVCS) CheckoutCount() int {
	count := 0
	for _, call := range f.Calls {
		if strings.HasPrefix(call, "checkout ") {
			count++
		}
	}
	return count
}

func (f *FakeVCS) record(format string, args ...interface{}) {
	f.Calls = append(f.Calls, fmt.Sprintf(format, args...))
}

func (f *FakeVCS) applyMerge(branch, source, message string) bool {
	target := f.Commits[branch]
	var missing []string
	for _, c := range f.Commits[source] {
		if !slices.Contains(target, c) {
			missing = append(missing, c)
		}
	}
	if len(missing) == 0 {
		return false
	}
	target = append(target, missing...)
	f.Commits[branch] = append(target, "merge: "+message)
	return true
}

func (f *FakeVCS) Checkout(_ context.Context, branch string) error {
	f.record("checkout %s", branch)
	if err := f.CheckoutErrors[branch]; err != nil {
		return err
	}
	if _, ok := f.Commits[branch]; !ok {
		return fmt.Errorf("unknown branch %s", branch)
	}
	f.Current = branch
	return nil
}

func (f *FakeVCS) Push(_ context.Context, branch string) error {
	f.record("push %s", branch)
	if err := f.PushErrors[branch]; err != nil {
		return err
	}
	f.Remote[branch] = slices.Clone(f.Commits[branch])
	return nil
}

func (f *FakeVCS) ForcePush(_ context.Context, branch string) error {
	f.record("force-push %s", branch)
	if err := f.PushErrors[branch]; err != nil {
		return err
	}
	f.Remote[branch] = slices.Clone(f.Commits[branch])
	return nil
}

func (f *FakeVCS) FetchRootInto(_ context.Context, root string) error {
	f.record("fetch %s", root)
	f.Commits[root] = slices.Clone(f.Remote[root])
	return nil
}

func (f *FakeVCS) PullRootInPlace(_ context.Context, root string) error {
	f.record("pull %s", root)
	f.Commits[root] = slices.Clone(f.Remote[root])
	return nil
}

func (f *FakeVCS) MergeInto(_ context.Context, source, message string) git.MergeResult {
	f.record("merge %s into %s: %s", source, f.Current, message)
	if f.MergeConflicts[f.Current] {
		delete(f.MergeConflicts, f.Current)
		f.pendingMerge = &pendingMerge{branch: f.Current, source: source, message: message}
		return git.MergeConflict
	}
	f.applyMerge(f.Current, source, message)
	return git.MergeDone
}

func (f *FakeVCS) RebaseOnto(_ context.Context, newBase, oldBase, until string) (git.RebaseResult, error) {
	f.record("rebase --onto %s %s %s", newBase, oldBase, until)
	if f.RebaseConflicts[until] {
		f.rebasing = true
		return git.RebaseConflict, prmanerrors.NewCommandError("git",
			[]string{"rebase", "--onto", newBase, oldBase, until},
			fmt.Sprintf("CONFLICT (content): Merge conflict in %s_test.txt", until),
			fmt.Sprintf("error: could not apply %s change", until),
			errors.New("exit status 1"))
	}

	old, ok := f.Snapshot[oldBase]
	if !ok {
		old = f.Commits[oldBase]
	}
	rebased := slices.Clone(f.Commits[newBase])
	for _, c := range f.Commits[until] {
		if !slices.Contains(old, c) {
			rebased = append(rebased, c)
		}
	}
	f.Commits[until] = rebased
	f.Current = until
	return git.RebaseDone, nil
}

func (f *FakeVCS) AbortRebase(_ context.Context) error {
	f.record("rebase --abort")
	f.rebasing = false
	return nil
}

// Rebasing reports whether a failed rebase was left in progress
func (f *FakeVCS) Rebasing() bool {
	return f.rebasing
}

func (f *FakeVCS) AmendTopCommitMessage(_ context.Context, message string) error {
	f.record("amend %s: %s", f.Current, message)
	history := f.Commits[f.Current]
	if len(history) == 0 {
		return fmt.Errorf("no commit to amend on %s", f.Current)
	}
	history[len(history)-1] = message
	return nil
}

func (f *FakeVCS) CurrentBranch() (string, error) {
	return f.Current, nil
}

func (f *FakeVCS) LastCommitInfo() (git.CommitInfo, error) {
	return f.Head, nil
}

// Revision hashes the branch history, so branches with equal histories share a
// revision. The history is remembered for later rebases.
func (f *FakeVCS) Revision(ref string) (string, error) {
	history, ok := f.Commits[ref]
	if !ok {
		return "", fmt.Errorf("unknown revision %s", ref)
	}
	h := fnv.New32a()
	h.Write([]byte(strings.Join(history, "\x00")))
	rev := fmt.Sprintf("%08x", h.Sum32())
	f.Snapshot[rev] = slices.Clone(history)
	return rev, nil
}

func (f *FakeVCS) DryRunPush(_ context.Context, branch string) git.PushStatus {
	f.record("push --dry-run %s", branch)
	if slices.Equal(f.Commits[branch], f.Remote[branch]) {
		return git.PushUpToDate
	}
	return git.PushDiverged
}

func (f *FakeVCS) WorkingTreeClean() (bool, error) {
	return f.Clean, nil
}

func (f *FakeVCS) ListLocalBranches() (map[string]bool, error) {
	branches := make(map[string]bool, len(f.Commits))
	for name := range f.Commits {
		branches[name] = true
	}
	return branches, nil
}

var _ engine.VersionControl = (*FakeVCS)(nil)
