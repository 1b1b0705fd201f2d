// Package contract provides interfaces and shared utilities for the RepVault CLI's internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/repvault/repvault/schema"
)

// Cache defines the contract for the disk-backed TTL cache.
// Implementations never propagate failures: reads degrade to a miss and
// writes degrade to a no-op, because the cache is an optimization and
// never a source of truth.
type Cache interface {
	// Get returns the payload for key, or false on absence, expiry or
	// corruption. Expired and corrupt entries are deleted on the way out.
	Get(key string) ([]byte, bool)

	// Set stores the payload with the given time-to-live, fully
	// replacing any prior entry for the key.
	Set(key string, value []byte, ttl time.Duration)

	// Invalidate removes one entry; no-op if absent.
	Invalidate(key string)

	// InvalidatePrefix removes every entry whose key starts with prefix.
	InvalidatePrefix(prefix string)

	// InvalidateAll removes every entry and recreates the backing store.
	InvalidateAll()

	// SweepExpired scans all entries, deletes the expired ones and
	// returns how many were removed.
	SweepExpired() int

	// Status returns entry count and size on disk, for diagnostics only.
	Status() schema.CacheStatus

	// Entries lists per-entry metadata, newest first, for diagnostics only.
	Entries() []schema.CacheEntryInfo
}

// Limiter defines the sliding-window admission gate for outbound calls.
type Limiter interface {
	// CanProceed reports whether a request may be admitted right now.
	CanProceed() bool

	// RemainingRequests returns how many admissions are left in the window.
	RemainingRequests() int

	// TimeUntilNextSlot returns how long until the oldest recorded
	// request falls out of the window. The second value is false when
	// the limiter is not blocked or has no history.
	TimeUntilNextSlot() (time.Duration, bool)

	// RecordRequest appends now to the window. Callers must only call
	// this when the request is actually happening; it is not idempotent.
	RecordRequest()

	// WaitAndRecord blocks until a slot is free, then records the
	// request atomically with the check. Cancelling ctx aborts the wait
	// with ctx.Err() and records nothing.
	WaitAndRecord(ctx context.Context) error

	// Reset clears all history. Intended for test isolation only.
	Reset()

	// Status returns a point-in-time probe of the window.
	Status() schema.LimiterStatus
}

// SessionStore persists the single in-progress session snapshot.
// This allows the persistence backend to be swapped and mocked for testing.
type SessionStore interface {
	// Save overwrites the snapshot, stamping it with the current time.
	Save(state schema.ActiveSessionState) error

	// Restore returns the snapshot only if it is younger than the
	// staleness cutoff; stale or unreadable snapshots are discarded and
	// reported as absent.
	Restore() (schema.ActiveSessionState, bool)

	// Clear removes the snapshot; no-op if absent.
	Clear() error

	// Status returns status information about the store.
	Status() (schema.SessionStoreStatus, error)

	// Close closes the underlying connection, if any.
	Close() error
}

// HistoryStore archives finished workout sessions. Only backends with a
// durable database implement this; the single-file snapshot backend does not.
type HistoryStore interface {
	// ArchiveSession appends one finished session and returns its ID.
	ArchiveSession(rec schema.SessionRecord) (int64, error)

	// ListSessions returns archived sessions, most recent first.
	ListSessions(limit int) ([]schema.SessionRecord, error)
}

// NotificationScheduler is the side channel a rest countdown uses as a
// backstop for when the app is not in the foreground. Failures to
// schedule must never block or fail the countdown itself.
type NotificationScheduler interface {
	Schedule(id string, fireAfter time.Duration, title, body string) error
	Cancel(id string)
}
