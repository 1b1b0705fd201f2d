// Package ratelimit implements the sliding-window admission gate for
// outbound calls.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/repvault/repvault/internal/contract"
	"github.com/repvault/repvault/schema"
)

// maxWaitIncrement bounds each sleep inside WaitAndRecord so that a
// cancellation is observed within roughly one increment rather than
// after the full remaining delay.
const maxWaitIncrement = 500 * time.Millisecond

// SlidingLimiter admits at most maxRequests within the trailing window.
// It keeps the raw timestamp list and prunes lazily on every read,
// which avoids the bursty admission a fixed-bucket counter shows at
// bucket boundaries. Pruning is O(n) with n bounded by maxRequests.
type SlidingLimiter struct {
	mu          sync.Mutex // single owner serializes check-then-record
	maxRequests int
	window      time.Duration
	timestamps  []time.Time
	now         func() time.Time
	sleep       func(time.Duration) // swapped out in tests
}

var _ contract.Limiter = &SlidingLimiter{} // Compile-time check

// New creates a limiter admitting maxRequests per window.
func New(maxRequests int, window time.Duration) *SlidingLimiter {
	return NewWithClock(maxRequests, window, time.Now, time.Sleep)
}

// NewWithClock creates a limiter with injected time and sleep functions
// so tests can simulate time instead of waiting on it.
func NewWithClock(maxRequests int, window time.Duration, now func() time.Time, sleep func(time.Duration)) *SlidingLimiter {
	return &SlidingLimiter{
		maxRequests: maxRequests,
		window:      window,
		now:         now,
		sleep:       sleep,
	}
}

// prune drops timestamps older than the trailing window.
// Callers must hold the mutex.
func (l *SlidingLimiter) prune(now time.Time) {
	cutoff := now.Add(-l.window)
	drop := 0
	for _, ts := range l.timestamps {
		if ts.After(cutoff) {
			break
		}
		drop++
	}
	if drop > 0 {
		l.timestamps = append(l.timestamps[:0], l.timestamps[drop:]...)
	}
}

// CanProceed reports whether fewer than maxRequests timestamps remain
// within the trailing window.
func (l *SlidingLimiter) CanProceed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prune(l.now())
	return len(l.timestamps) < l.maxRequests
}

// RemainingRequests returns how many admissions are left in the window.
func (l *SlidingLimiter) RemainingRequests() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prune(l.now())
	remaining := l.maxRequests - len(l.timestamps)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// TimeUntilNextSlot returns how long until the oldest timestamp falls
// outside the window. The second value is false when the limiter is not
// blocked or has no history.
func (l *SlidingLimiter) TimeUntilNextSlot() (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	l.prune(now)
	if len(l.timestamps) < l.maxRequests || len(l.timestamps) == 0 {
		return 0, false
	}
	wait := l.window - now.Sub(l.timestamps[0])
	if wait < 0 {
		wait = 0
	}
	return wait, true
}

// RecordRequest appends now to the window. It must be called exactly
// once per admitted request and never speculatively.
func (l *SlidingLimiter) RecordRequest() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.timestamps = append(l.timestamps, l.now())
}

// WaitAndRecord blocks until a slot is free, then records the request
// atomically with the check: the mutex is held across check-then-record,
// so two concurrent waiters can never both take the same slot. The wait
// is a poll-and-sleep loop with bounded increments; cancelling ctx
// aborts promptly, records nothing, and leaves the window unchanged.
func (l *SlidingLimiter) WaitAndRecord(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		l.mu.Lock()
		now := l.now()
		l.prune(now)
		if len(l.timestamps) < l.maxRequests {
			l.timestamps = append(l.timestamps, now)
			l.mu.Unlock()
			return nil
		}
		wait := l.window - now.Sub(l.timestamps[0])
		l.mu.Unlock()

		if wait <= 0 {
			// The slot frees on the next pruning pass.
			continue
		}
		if wait > maxWaitIncrement {
			wait = maxWaitIncrement
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			l.sleep(wait)
		}
	}
}

// Reset clears history; used only for test isolation.
func (l *SlidingLimiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.timestamps = l.timestamps[:0]
}

// Status returns a point-in-time probe of the window for diagnostics.
func (l *SlidingLimiter) Status() schema.LimiterStatus {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	l.prune(now)

	status := schema.LimiterStatus{
		MaxRequests: l.maxRequests,
		Window:      l.window,
		Used:        len(l.timestamps),
	}
	status.Remaining = l.maxRequests - status.Used
	if status.Remaining < 0 {
		status.Remaining = 0
	}
	if status.Used >= l.maxRequests && len(l.timestamps) > 0 {
		status.Blocked = true
		if wait := l.window - now.Sub(l.timestamps[0]); wait > 0 {
			status.RetryAfter = wait
		}
	}
	return status
}
