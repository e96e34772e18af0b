package testhelpers

import (
	"context"
	"fmt"

	"prman.dev/prman/internal/engine"
)

// FakeReview is an in-memory engine.CodeReview. Landing a pull request adds a
// squash commit to the remote root of VCS when one is attached.
type FakeReview struct {
	PRs     []engine.PullRequest
	Created []engine.CreateRequest
	Landed  []int

	LandResult engine.LandResult
	LandErr    error
	ListErr    error
	CreateErr  error

	VCS *FakeVCS
}

func (r *FakeReview) ListOpenPullRequests(_ context.Context, knownBranches map[string]bool) ([]engine.PullRequest, error) {
	if r.ListErr != nil {
		return nil, r.ListErr
	}
	var prs []engine.PullRequest
	for _, pr := range r.PRs {
		if knownBranches[pr.Base] && knownBranches[pr.Compare] {
			prs = append(prs, pr)
		}
	}
	return prs, nil
}

func (r *FakeReview) CreatePullRequest(_ context.Context, req engine.CreateRequest) (string, error) {
	if r.CreateErr != nil {
		return "", r.CreateErr
	}
	r.Created = append(r.Created, req)
	return fmt.Sprintf("https://github.com/owner/repo/pull/%d", 100+len(r.Created)), nil
}

func (r *FakeReview) LandPullRequest(_ context.Context, pr engine.PullRequest, root string) (engine.LandResult, error) {
	if r.LandErr != nil {
		return engine.LandDone, r.LandErr
	}
	r.Landed = append(r.Landed, pr.Number)
	if r.VCS != nil {
		r.VCS.record("land #%d", pr.Number)
		r.VCS.CommitRemote(root, fmt.Sprintf("squash #%d", pr.Number))
	}
	for i := range r.PRs {
		if r.PRs[i].Base == pr.Compare {
			r.PRs[i].Base = root
		}
	}
	return r.LandResult, nil
}

var _ engine.CodeReview = (*FakeReview)(nil)

// MemoryCheckpointStore is an in-memory engine.CheckpointStore
type MemoryCheckpointStore struct {
	State  *engine.PropagationState
	Saves  int
	Loads  int
	Clears int
}

func (s *MemoryCheckpointStore) Exists() (bool, error) {
	return s.State != nil, nil
}

func (s *MemoryCheckpointStore) Save(state engine.PropagationState) error {
	s.Saves++
	s.State = &state
	return nil
}

func (s *MemoryCheckpointStore) Load() (*engine.PropagationState, error) {
	s.Loads++
	if s.State == nil {
		return nil, fmt.Errorf("no checkpoint")
	}
	state := *s.State
	return &state, nil
}

func (s *MemoryCheckpointStore) Clear() error {
	s.Clears++
	s.State = nil
	return nil
}

var _ engine.CheckpointStore = (*MemoryCheckpointStore)(nil)
