// Package lifeclock provides lifecycle-aware timers.
//
// The process hosting a timer can be suspended or killed at any
// instant, so nothing here accumulates ticks: every reading is
// recomputed from an absolute anchor timestamp. A periodic display tick
// is purely a UI refresh that re-reads CurrentValue; its rate affects
// display smoothness, never correctness.
package lifeclock

import (
	"sync"
	"time"

	"github.com/repvault/repvault/schema"
)

// Clock measures elapsed or remaining time from absolute timestamps.
// In elapsed mode the anchor is startedAt; in countdown mode it is
// endAt. Pausing freezes the computed value, and resuming re-derives
// the anchor from now and the frozen value, so drift never accumulates
// across pause/resume cycles.
type Clock struct {
	mu            sync.Mutex
	mode          schema.ClockMode
	startedAt     time.Time
	endAt         time.Time
	durationTotal time.Duration
	paused        bool
	frozen        time.Duration
	now           func() time.Time
}

// NewElapsed starts an elapsed-mode clock anchored at now.
func NewElapsed() *Clock {
	return NewElapsedWithClock(time.Now)
}

// NewElapsedWithClock starts an elapsed-mode clock with an injected
// time source for tests.
func NewElapsedWithClock(now func() time.Time) *Clock {
	return &Clock{mode: schema.ElapsedMode, startedAt: now(), now: now}
}

// NewCountdown starts a countdown of the given duration ending at
// now + duration.
func NewCountdown(duration time.Duration) *Clock {
	return NewCountdownWithClock(duration, time.Now)
}

// NewCountdownWithClock starts a countdown with an injected time source
// for tests.
func NewCountdownWithClock(duration time.Duration, now func() time.Time) *Clock {
	return &Clock{
		mode:          schema.CountdownMode,
		endAt:         now().Add(duration),
		durationTotal: duration,
		now:           now,
	}
}

// NewFromState rebuilds a countdown from persisted state, e.g. after a
// relaunch. The anchor timestamps carry over unchanged: remaining time
// keeps draining while the process is gone, which is the point.
func NewFromState(state schema.CountdownState, now func() time.Time) *Clock {
	return &Clock{
		mode:          schema.CountdownMode,
		endAt:         state.EndAt,
		durationTotal: state.DurationTotal,
		paused:        state.Paused,
		frozen:        state.RemainingAtPause,
		now:           now,
	}
}

// currentLocked computes the value fresh from the anchor.
// Callers must hold the mutex.
func (c *Clock) currentLocked() time.Duration {
	if c.paused {
		return c.frozen
	}
	now := c.now()
	if c.mode == schema.ElapsedMode {
		return now.Sub(c.startedAt)
	}
	remaining := c.endAt.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// CurrentValue returns elapsed time (elapsed mode) or remaining time
// (countdown mode). Call it fresh whenever the app becomes active
// again; it never trusts anything accumulated while suspended.
func (c *Clock) CurrentValue() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentLocked()
}

// Pause freezes the currently computed value. Pausing twice is a no-op.
func (c *Clock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.paused {
		return
	}
	c.frozen = c.currentLocked()
	c.paused = true
}

// Resume re-derives the anchor from now and the frozen value.
// Resuming a running clock is a no-op.
func (c *Clock) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.paused {
		return
	}
	now := c.now()
	if c.mode == schema.ElapsedMode {
		c.startedAt = now.Add(-c.frozen)
	} else {
		c.endAt = now.Add(c.frozen)
	}
	c.paused = false
}

// Reset re-anchors to now, discarding prior state. For countdown mode
// the new duration replaces the old one; elapsed mode restarts at zero
// and ignores the argument.
func (c *Clock) Reset(newDuration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	c.paused = false
	c.frozen = 0
	if c.mode == schema.ElapsedMode {
		c.startedAt = now
		return
	}
	c.durationTotal = newDuration
	c.endAt = now.Add(newDuration)
}

// Done reports whether a countdown has reached zero. The clock only
// reports the terminal state; one-time completion side effects are the
// caller's job. Elapsed clocks are never done.
func (c *Clock) Done() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode == schema.CountdownMode && !c.paused && c.currentLocked() == 0
}

// Paused reports whether the clock is frozen.
func (c *Clock) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

// Mode returns the clock mode.
func (c *Clock) Mode() schema.ClockMode {
	return c.mode
}

// State returns countdown state suitable for persistence. Only
// meaningful in countdown mode.
func (c *Clock) State() schema.CountdownState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return schema.CountdownState{
		DurationTotal:    c.durationTotal,
		EndAt:            c.endAt,
		Paused:           c.paused,
		RemainingAtPause: c.frozen,
	}
}
