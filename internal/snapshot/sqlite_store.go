package snapshot

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/repvault/repvault/internal/contract"
	"github.com/repvault/repvault/schema"
	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteStore persists the snapshot as a single upserted row and keeps
// an append-only archive of finished sessions in the same database.
type SQLiteStore struct {
	mu     sync.Mutex
	db     *sql.DB
	cutoff time.Duration
	now    func() time.Time
}

var (
	_ contract.SessionStore = &SQLiteStore{} // Compile-time check
	_ contract.HistoryStore = &SQLiteStore{} // Compile-time check
)

// NewSQLiteStore opens (creating if needed) the session database at
// dbPath and runs pending migrations.
func NewSQLiteStore(dbPath string, cutoff time.Duration) (*SQLiteStore, error) {
	return NewSQLiteStoreWithClock(dbPath, cutoff, time.Now)
}

// NewSQLiteStoreWithClock opens the store with an injected time source
// for tests.
func NewSQLiteStoreWithClock(dbPath string, cutoff time.Duration, now func() time.Time) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create session DB directory: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open session DB at %q: %w. Ensure the directory is writable", dbPath, err)
	}
	// Limit SQLite to a single open connection to avoid "database is locked" errors
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to session DB: %w", err)
	}
	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate session DB: %w", err)
	}
	return &SQLiteStore{db: db, cutoff: cutoff, now: now}, nil
}

// Save upserts the single snapshot row, stamped with SavedAt = now.
func (s *SQLiteStore) Save(state schema.ActiveSessionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state.SavedAt = s.now()
	raw, err := json.Marshal(&state)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO active_session (id, state, saved_at) VALUES (1, ?, ?)`,
		raw, state.SavedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// Restore returns the snapshot only while it is younger than the
// staleness cutoff; stale or undecodable rows are deleted and reported
// as absent.
func (s *SQLiteStore) Restore() (schema.ActiveSessionState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var raw []byte
	row := s.db.QueryRow(`SELECT state FROM active_session WHERE id = 1`)
	if err := row.Scan(&raw); err != nil {
		return schema.ActiveSessionState{}, false
	}
	var state schema.ActiveSessionState
	if err := json.Unmarshal(raw, &state); err != nil {
		// Corrupt snapshot reads as "nothing to resume".
		_, _ = s.db.Exec(`DELETE FROM active_session WHERE id = 1`)
		return schema.ActiveSessionState{}, false
	}
	if s.now().Sub(state.SavedAt) >= s.cutoff {
		_, _ = s.db.Exec(`DELETE FROM active_session WHERE id = 1`)
		return schema.ActiveSessionState{}, false
	}
	return state, true
}

// Clear removes the snapshot row; no-op if absent.
func (s *SQLiteStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.Exec(`DELETE FROM active_session WHERE id = 1`); err != nil {
		return fmt.Errorf("failed to clear snapshot: %w", err)
	}
	return nil
}

// ArchiveSession appends one finished session and returns its ID.
func (s *SQLiteStore) ArchiveSession(rec schema.SessionRecord) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(
		`INSERT INTO session_history (workout_kind, started_at, duration_seconds, total_sets, finished_at)
		 VALUES (?, ?, ?, ?, ?)`,
		string(rec.WorkoutKind), rec.StartedAt.Unix(), rec.DurationSeconds, rec.TotalSets, rec.FinishedAt.Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to archive session: %w", err)
	}
	return res.LastInsertId()
}

// ListSessions returns archived sessions, most recent first.
// A limit <= 0 returns everything.
func (s *SQLiteStore) ListSessions(limit int) ([]schema.SessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `SELECT session_id, workout_kind, started_at, duration_seconds, total_sets, finished_at
		FROM session_history ORDER BY finished_at DESC, session_id DESC`
	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = s.db.Query(query+` LIMIT ?`, limit)
	} else {
		rows, err = s.db.Query(query)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []schema.SessionRecord
	for rows.Next() {
		var rec schema.SessionRecord
		var kind string
		var startedAt, finishedAt int64
		if err := rows.Scan(&rec.SessionID, &kind, &startedAt, &rec.DurationSeconds, &rec.TotalSets, &finishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		rec.WorkoutKind = schema.WorkoutKind(kind)
		rec.StartedAt = time.Unix(startedAt, 0).UTC()
		rec.FinishedAt = time.Unix(finishedAt, 0).UTC()
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Status returns status information about the store.
func (s *SQLiteStore) Status() (schema.SessionStoreStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := schema.SessionStoreStatus{
		Backend:   string(schema.SQLiteBackend),
		Connected: s.db != nil,
	}
	if s.db == nil {
		return status, nil
	}

	var savedAt int64
	row := s.db.QueryRow(`SELECT saved_at FROM active_session WHERE id = 1`)
	switch err := row.Scan(&savedAt); {
	case err == nil:
		status.HasSnapshot = true
		status.SavedAt = time.Unix(savedAt, 0).UTC()
	case errors.Is(err, sql.ErrNoRows):
		// No active snapshot
	default:
		return status, fmt.Errorf("failed to read snapshot row: %w", err)
	}

	row = s.db.QueryRow(`SELECT COUNT(*) FROM session_history`)
	if err := row.Scan(&status.TotalHistory); err != nil {
		return status, fmt.Errorf("failed to count history: %w", err)
	}
	return status, nil
}

// Close closes the underlying DB connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
