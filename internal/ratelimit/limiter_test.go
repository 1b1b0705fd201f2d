package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testClock is a fake time source whose Sleep advances the clock
// instead of blocking, so window expiry can be simulated instantly.
type testClock struct {
	mu      sync.Mutex
	current time.Time
}

func newTestClock() *testClock {
	return &testClock{current: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *testClock) Sleep(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
}

func TestSlidingLimiterAdmission(t *testing.T) {
	clock := newTestClock()
	limiter := NewWithClock(3, 10*time.Second, clock.Now, clock.Sleep)

	assert.True(t, limiter.CanProceed())
	assert.Equal(t, 3, limiter.RemainingRequests())

	limiter.RecordRequest()
	limiter.RecordRequest()
	limiter.RecordRequest()

	assert.False(t, limiter.CanProceed(), "window is full after maxRequests records")
	assert.Equal(t, 0, limiter.RemainingRequests())

	clock.Sleep(9 * time.Second)
	assert.False(t, limiter.CanProceed(), "still blocked just inside the window")

	clock.Sleep(time.Second + time.Millisecond)
	assert.True(t, limiter.CanProceed(), "oldest timestamp has left the window")
	assert.Equal(t, 3, limiter.RemainingRequests())
}

func TestSlidingLimiterTimeUntilNextSlot(t *testing.T) {
	clock := newTestClock()
	limiter := NewWithClock(2, 10*time.Second, clock.Now, clock.Sleep)

	t.Run("no history", func(t *testing.T) {
		_, blocked := limiter.TimeUntilNextSlot()
		assert.False(t, blocked)
	})

	t.Run("not blocked", func(t *testing.T) {
		limiter.RecordRequest()
		_, blocked := limiter.TimeUntilNextSlot()
		assert.False(t, blocked)
	})

	t.Run("blocked", func(t *testing.T) {
		limiter.RecordRequest()
		clock.Sleep(4 * time.Second)

		wait, blocked := limiter.TimeUntilNextSlot()
		assert.True(t, blocked)
		assert.Equal(t, 6*time.Second, wait, "window minus age of oldest timestamp")
	})
}

func TestSlidingLimiterWaitAndRecord(t *testing.T) {
	clock := newTestClock()
	limiter := NewWithClock(3, 10*time.Second, clock.Now, clock.Sleep)

	start := clock.Now()
	for range 3 {
		require.NoError(t, limiter.WaitAndRecord(context.Background()))
	}
	assert.Equal(t, start, clock.Now(), "free slots admit without waiting")

	clock.Sleep(time.Second)

	// Fourth request at t=1 must not be admitted before t≈10.
	require.NoError(t, limiter.WaitAndRecord(context.Background()))
	waited := clock.Now().Sub(start)
	assert.GreaterOrEqual(t, waited, 10*time.Second, "admission only after the oldest slot frees")
	assert.Equal(t, 1, limiter.Status().Used, "the admitted waiter consumed one slot")
}

func TestSlidingLimiterCancellationLeavesNoTrace(t *testing.T) {
	clock := newTestClock()
	ctx, cancel := context.WithCancel(context.Background())

	// Sleep cancels the context instead of advancing time, simulating a
	// caller that gives up mid-wait.
	limiter := NewWithClock(1, 10*time.Second, clock.Now, func(time.Duration) { cancel() })
	limiter.RecordRequest()

	before := limiter.RemainingRequests()
	err := limiter.WaitAndRecord(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, before, limiter.RemainingRequests(), "no request may be recorded on cancellation")
}

func TestSlidingLimiterWaitAndRecordPreCancelled(t *testing.T) {
	limiter := New(1, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := limiter.WaitAndRecord(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, limiter.RemainingRequests())
}

func TestSlidingLimiterConcurrentWaiters(t *testing.T) {
	// Real clock with a tiny window: two waiters racing for freed slots
	// must be admitted one per slot, never both for the same slot.
	limiter := New(2, 50*time.Millisecond)
	limiter.RecordRequest()
	limiter.RecordRequest()

	var wg sync.WaitGroup
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, limiter.WaitAndRecord(context.Background()))
		}()
	}
	wg.Wait()

	status := limiter.Status()
	assert.Equal(t, 2, status.Used, "exactly one slot consumed per admitted waiter")
}

func TestSlidingLimiterReset(t *testing.T) {
	limiter := New(2, time.Minute)
	limiter.RecordRequest()
	limiter.RecordRequest()
	assert.False(t, limiter.CanProceed())

	limiter.Reset()
	assert.True(t, limiter.CanProceed())
	assert.Equal(t, 2, limiter.RemainingRequests())
}

func TestSlidingLimiterStatus(t *testing.T) {
	clock := newTestClock()
	limiter := NewWithClock(2, 10*time.Second, clock.Now, clock.Sleep)

	status := limiter.Status()
	assert.Equal(t, 2, status.MaxRequests)
	assert.Equal(t, 10*time.Second, status.Window)
	assert.False(t, status.Blocked)

	limiter.RecordRequest()
	limiter.RecordRequest()
	clock.Sleep(3 * time.Second)

	status = limiter.Status()
	assert.Equal(t, 2, status.Used)
	assert.Equal(t, 0, status.Remaining)
	assert.True(t, status.Blocked)
	assert.Equal(t, 7*time.Second, status.RetryAfter)
}
