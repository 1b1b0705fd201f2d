// Package schema has configs, models and shared types for all parts of repvault.
package schema

import "time"

// CacheEntry is the on-disk representation of a single cached value.
// The value payload is opaque to the cache; callers decide its shape.
type CacheEntry struct {
	Value    []byte        `json:"value"`
	StoredAt time.Time     `json:"stored_at"`
	TTL      time.Duration `json:"ttl"`
}

// Expired reports whether the entry is past its time-to-live at the
// given instant. An entry is valid iff now - storedAt < ttl.
func (e *CacheEntry) Expired(now time.Time) bool {
	return now.Sub(e.StoredAt) >= e.TTL
}

// SetRecord captures one completed set within an active workout session.
type SetRecord struct {
	Exercise    string    `json:"exercise"`
	SetNumber   int       `json:"set_number"`
	Reps        int       `json:"reps"`
	WeightKg    float64   `json:"weight_kg"`
	CompletedAt time.Time `json:"completed_at"`
}

// ActiveSessionState is the snapshot of an in-progress workout session.
// It is persisted whenever the session mutates meaningfully so that a
// killed process can resume where it left off.
type ActiveSessionState struct {
	WorkoutKind    WorkoutKind `json:"workout_kind"`
	StartedAt      time.Time   `json:"started_at"`
	ElapsedSeconds int         `json:"elapsed_seconds"`
	CompletedSets  []SetRecord `json:"completed_sets"`
	SavedAt        time.Time   `json:"saved_at"`
}

// CountdownState is the timestamp-anchored state of a rest countdown.
// While running, remaining derives from EndAt; while paused, it is
// frozen at RemainingAtPause.
type CountdownState struct {
	DurationTotal    time.Duration `json:"duration_total"`
	EndAt            time.Time     `json:"end_at"`
	Paused           bool          `json:"paused"`
	RemainingAtPause time.Duration `json:"remaining_at_pause"`
}

// SessionRecord is one finished workout session, archived to the history
// store when the active session is cleared.
type SessionRecord struct {
	SessionID       int64       `json:"session_id"`
	WorkoutKind     WorkoutKind `json:"workout_kind"`
	StartedAt       time.Time   `json:"started_at"`
	DurationSeconds int         `json:"duration_seconds"`
	TotalSets       int         `json:"total_sets"`
	FinishedAt      time.Time   `json:"finished_at"`
}
