// Package snapshot persists in-progress workout session state across
// process death.
//
// The store holds exactly one snapshot at a time, overwritten on every
// save and only eligible for restoration while younger than the
// staleness cutoff. Callers save on every meaningful mutation (set
// completed, backgrounding, periodic autosave) and never rely on a
// clean shutdown path.
package snapshot

import (
	"fmt"
	"sync"
	"time"

	"github.com/repvault/repvault/internal/contract"
	"github.com/repvault/repvault/schema"
)

// Manager owns the session and history stores for one configured
// backend. It is constructed once at app start and passed by reference;
// there is no process-wide instance.
type Manager struct {
	sync.RWMutex // Protects the store pointers
	session      contract.SessionStore
	history      contract.HistoryStore
}

// NewManager initializes the stores for the given backend.
// The file backend keeps the snapshot as a single JSON record and has
// no history; the sqlite backend persists both.
func NewManager(backend schema.StorageBackend, cfg *contract.Config) (*Manager, error) {
	mgr := &Manager{}
	switch backend {
	case schema.FileBackend:
		mgr.session = NewFileStore(cfg.SnapshotPath, cfg.StalenessCutoff)

	case schema.SQLiteBackend:
		store, err := NewSQLiteStore(cfg.SessionDBPath, cfg.StalenessCutoff)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize session store: %w", err)
		}
		mgr.session = store
		mgr.history = store

	case schema.NoneBackend:
		mgr.session = &NoneStore{}

	default:
		return nil, fmt.Errorf("unsupported session backend: %s. Must be file, sqlite, or none", backend)
	}
	return mgr, nil
}

// GetSessionStore returns the session snapshot store.
func (mgr *Manager) GetSessionStore() contract.SessionStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.session
}

// GetHistoryStore returns the history store, or nil when the backend
// has none.
func (mgr *Manager) GetHistoryStore() contract.HistoryStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.history
}

// FinishSession archives the finished session (when the backend keeps
// history) and clears the active snapshot. The archive failing does not
// keep the snapshot around: the session is over either way.
func (mgr *Manager) FinishSession(state schema.ActiveSessionState, finishedAt time.Time) error {
	mgr.RLock()
	session, history := mgr.session, mgr.history
	mgr.RUnlock()

	var archiveErr error
	if history != nil {
		rec := schema.SessionRecord{
			WorkoutKind:     state.WorkoutKind,
			StartedAt:       state.StartedAt,
			DurationSeconds: state.ElapsedSeconds,
			TotalSets:       len(state.CompletedSets),
			FinishedAt:      finishedAt,
		}
		if _, err := history.ArchiveSession(rec); err != nil {
			archiveErr = fmt.Errorf("failed to archive session: %w", err)
		}
	}
	if err := session.Clear(); err != nil {
		return fmt.Errorf("failed to clear snapshot: %w", err)
	}
	return archiveErr
}

// Close should be called on application shutdown.
func (mgr *Manager) Close() {
	mgr.Lock()
	defer mgr.Unlock()
	if mgr.session != nil {
		_ = mgr.session.Close()
	}
}

// NoneStore is the no-op store for disabled persistence.
type NoneStore struct{}

var _ contract.SessionStore = &NoneStore{} // Compile-time check

// Save discards the state.
func (s *NoneStore) Save(schema.ActiveSessionState) error { return nil }

// Restore always reports no session.
func (s *NoneStore) Restore() (schema.ActiveSessionState, bool) {
	return schema.ActiveSessionState{}, false
}

// Clear is a no-op.
func (s *NoneStore) Clear() error { return nil }

// Status reports a disconnected store.
func (s *NoneStore) Status() (schema.SessionStoreStatus, error) {
	return schema.SessionStoreStatus{Backend: string(schema.NoneBackend)}, nil
}

// Close is a no-op.
func (s *NoneStore) Close() error { return nil }
