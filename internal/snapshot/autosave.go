package snapshot

import (
	"context"
	"time"

	"github.com/repvault/repvault/internal/contract"
	"github.com/repvault/repvault/schema"
)

// Autosaver periodically snapshots the active session so that even a
// session that never mutates (a long rest, a forgotten phone) stays
// within the staleness cutoff. It is a supplement to save-on-mutation,
// not a replacement.
type Autosaver struct {
	store    contract.SessionStore
	interval time.Duration
	snapshot func() (schema.ActiveSessionState, bool)
}

// NewAutosaver creates an autosaver reading the current session from
// the snapshot callback. The callback's second value reports whether a
// session is active; inactive ticks save nothing.
func NewAutosaver(store contract.SessionStore, interval time.Duration, snapshot func() (schema.ActiveSessionState, bool)) *Autosaver {
	if interval <= 0 {
		interval = contract.DefaultAutosaveInterval
	}
	return &Autosaver{store: store, interval: interval, snapshot: snapshot}
}

// Run saves on every tick until ctx is cancelled. Save failures are
// logged and skipped; the next tick tries again.
func (a *Autosaver) Run(ctx context.Context) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			state, active := a.snapshot()
			if !active {
				continue
			}
			if err := a.store.Save(state); err != nil {
				contract.LogWarn("autosaving session snapshot", err)
			}
		}
	}
}
