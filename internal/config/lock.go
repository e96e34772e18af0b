package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"

	prmanerrors "prman.dev/prman/internal/errors"
)

// RepoLock is an exclusive lock on a repository's working tree, held as a file
type RepoLock struct {
	PID       int       `json:"pid"`
	Hostname  string    `json:"hostname"`
	Command   string    `json:"command"`
	StartedAt time.Time `json:"started_at"`

	path string
}

// lockWriteGrace is how long an unreadable lock file is assumed to be still
// being written by its owner.
const lockWriteGrace = 5 * time.Second

// AcquireLock creates the lock file at path. A lock left behind by a process
// that is no longer running is replaced, as is a lock file that cannot be
// parsed once it is older than lockWriteGrace.
func AcquireLock(path, command string) (*RepoLock, error) {
	existing, err := ReadLock(path)
	switch {
	case err == nil:
		if isProcessAlive(existing.PID) {
			return nil, fmt.Errorf("%w: %s started by PID %d on %s (%s)", prmanerrors.ErrRepositoryLocked, existing.Command, existing.PID, existing.Hostname, path)
		}
		if err := removeStaleLock(path); err != nil {
			return nil, err
		}
	case !errors.Is(err, os.ErrNotExist):
		info, statErr := os.Stat(path)
		if statErr == nil && time.Since(info.ModTime()) < lockWriteGrace {
			return nil, fmt.Errorf("%w: %s", prmanerrors.ErrRepositoryLocked, path)
		}
		if err := removeStaleLock(path); err != nil {
			return nil, err
		}
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	lock := &RepoLock{
		PID:       os.Getpid(),
		Hostname:  hostname,
		Command:   command,
		StartedAt: time.Now(),
		path:      path,
	}

	data, err := json.MarshalIndent(lock, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal lock: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	// O_EXCL fails if another process created the file since the check above.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		if os.IsExist(err) {
			return nil, fmt.Errorf("%w: %s", prmanerrors.ErrRepositoryLocked, path)
		}
		return nil, fmt.Errorf("failed to create lock file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("failed to write lock file: %w", err)
	}

	return lock, nil
}

// Release removes the lock file if it still belongs to this process.
// Safe to call multiple times.
func (l *RepoLock) Release() error {
	if l == nil || l.path == "" {
		return nil
	}

	existing, err := ReadLock(l.path)
	if err != nil {
		return nil
	}
	if existing.PID != l.PID {
		return nil
	}

	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func removeStaleLock(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove stale lock %s: %w", path, err)
	}
	return nil
}

// ReadLock reads a lock file
func ReadLock(path string) (*RepoLock, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var lock RepoLock
	if err := json.Unmarshal(data, &lock); err != nil {
		return nil, fmt.Errorf("failed to parse lock file: %w", err)
	}
	lock.path = path
	return &lock, nil
}

func isProcessAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}
