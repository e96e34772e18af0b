package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"prman.dev/prman/internal/engine"
	prmanerrors "prman.dev/prman/internal/errors"
)

// FileCheckpointStore keeps the evolve checkpoint as a JSON document on disk
type FileCheckpointStore struct {
	path string
}

// NewFileCheckpointStore creates a store at path, resolved against repoRoot when relative
func NewFileCheckpointStore(repoRoot, path string) *FileCheckpointStore {
	if !filepath.IsAbs(path) {
		path = filepath.Join(repoRoot, path)
	}
	return &FileCheckpointStore{path: path}
}

// Path returns the checkpoint file location
func (s *FileCheckpointStore) Path() string {
	return s.path
}

// Exists reports whether a checkpoint is pending
func (s *FileCheckpointStore) Exists() (bool, error) {
	_, err := os.Stat(s.path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat checkpoint: %w", err)
}

// Save writes the checkpoint to disk
func (s *FileCheckpointStore) Save(state engine.PropagationState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0750); err != nil {
		return fmt.Errorf("failed to create checkpoint directory: %w", err)
	}
	return os.WriteFile(s.path, data, 0600)
}

// Load reads the checkpoint from disk
func (s *FileCheckpointStore) Load() (*engine.PropagationState, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, prmanerrors.ErrNothingPending
		}
		return nil, fmt.Errorf("failed to read checkpoint: %w", err)
	}

	var state engine.PropagationState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse checkpoint: %w", err)
	}
	if state.BranchToPrNumber == nil {
		state.BranchToPrNumber = map[string]int{}
	}
	return &state, nil
}

// Clear removes the checkpoint file
func (s *FileCheckpointStore) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear checkpoint: %w", err)
	}
	return nil
}

var _ engine.CheckpointStore = (*FileCheckpointStore)(nil)
