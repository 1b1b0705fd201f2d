package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/repvault/repvault/internal/contract"
	"github.com/repvault/repvault/schema"
)

// FileStore keeps the snapshot as a single JSON record on disk,
// overwritten in place on every save. This is the default backend.
type FileStore struct {
	mu     sync.Mutex
	path   string
	cutoff time.Duration
	now    func() time.Time
}

var _ contract.SessionStore = &FileStore{} // Compile-time check

// NewFileStore creates a store persisting to path with the given
// staleness cutoff.
func NewFileStore(path string, cutoff time.Duration) *FileStore {
	return NewFileStoreWithClock(path, cutoff, time.Now)
}

// NewFileStoreWithClock creates a store with an injected time source
// for tests.
func NewFileStoreWithClock(path string, cutoff time.Duration, now func() time.Time) *FileStore {
	return &FileStore{path: path, cutoff: cutoff, now: now}
}

// Save persists the full snapshot, stamped with SavedAt = now.
func (s *FileStore) Save(state schema.ActiveSessionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state.SavedAt = s.now()
	raw, err := json.Marshal(&state)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// Restore returns the snapshot only while it is younger than the
// staleness cutoff. Stale and unreadable snapshots are discarded and
// reported as absent, so an unrelated relaunch days later cannot
// silently resume an old workout.
func (s *FileStore) Restore() (schema.ActiveSessionState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		return schema.ActiveSessionState{}, false
	}
	var state schema.ActiveSessionState
	if err := json.Unmarshal(raw, &state); err != nil {
		// Corrupt snapshot reads as "nothing to resume".
		_ = os.Remove(s.path)
		return schema.ActiveSessionState{}, false
	}
	if s.now().Sub(state.SavedAt) >= s.cutoff {
		_ = os.Remove(s.path)
		return schema.ActiveSessionState{}, false
	}
	return state, true
}

// Clear removes the snapshot; no-op if absent.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear snapshot: %w", err)
	}
	return nil
}

// Status returns status information about the store.
func (s *FileStore) Status() (schema.SessionStoreStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := schema.SessionStoreStatus{
		Backend:   string(schema.FileBackend),
		Connected: true,
	}
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return status, nil
	}
	var state schema.ActiveSessionState
	if err := json.Unmarshal(raw, &state); err != nil {
		return status, nil
	}
	status.HasSnapshot = true
	status.SavedAt = state.SavedAt
	return status, nil
}

// Close is a no-op for the file backend.
func (s *FileStore) Close() error { return nil }
