package lifeclock

import (
	"fmt"
	"time"

	"github.com/repvault/repvault/internal/contract"
)

// RestCountdown is a countdown that additionally schedules a one-shot
// backstop notification so the user still hears about completion while
// the app is suspended. Exactly one notification is pending per
// countdown instance: every schedule cancels the previous id first.
type RestCountdown struct {
	clock *Clock
	sched contract.NotificationScheduler
	id    string
	title string
	body  string
}

// NewRestCountdown starts a rest countdown for the given duration and
// schedules its backstop notification.
func NewRestCountdown(duration time.Duration, sched contract.NotificationScheduler) *RestCountdown {
	return NewRestCountdownWithClock(duration, sched, time.Now)
}

// NewRestCountdownWithClock starts a rest countdown with an injected
// time source for tests.
func NewRestCountdownWithClock(duration time.Duration, sched contract.NotificationScheduler, now func() time.Time) *RestCountdown {
	r := &RestCountdown{
		clock: NewCountdownWithClock(duration, now),
		sched: sched,
		id:    fmt.Sprintf("rest-%d", now().UnixNano()),
		title: "Rest complete",
		body:  "Time's up — back to your workout!",
	}
	r.scheduleBackstop()
	return r
}

// scheduleBackstop replaces the pending notification with one timed for
// the current remaining duration. Scheduling failures are logged and
// ignored; the countdown's own state stays the source of truth.
func (r *RestCountdown) scheduleBackstop() {
	remaining := r.clock.CurrentValue()
	if remaining <= 0 {
		return
	}
	r.sched.Cancel(r.id)
	if err := r.sched.Schedule(r.id, remaining, r.title, r.body); err != nil {
		contract.LogWarn("scheduling backstop notification", err)
	}
}

// Remaining returns the time left, recomputed from the end anchor.
func (r *RestCountdown) Remaining() time.Duration {
	return r.clock.CurrentValue()
}

// Pause freezes the countdown and cancels the pending notification.
func (r *RestCountdown) Pause() {
	r.clock.Pause()
	r.sched.Cancel(r.id)
}

// Resume unfreezes the countdown and schedules a fresh backstop for the
// re-derived remaining time.
func (r *RestCountdown) Resume() {
	if !r.clock.Paused() {
		return
	}
	r.clock.Resume()
	r.scheduleBackstop()
}

// Reset restarts the countdown with a new duration and replaces the
// pending notification.
func (r *RestCountdown) Reset(duration time.Duration) {
	r.clock.Reset(duration)
	r.scheduleBackstop()
}

// Dismiss tears the countdown down, cancelling the pending notification
// so a stale alert cannot fire after the user has moved on.
func (r *RestCountdown) Dismiss() {
	r.clock.Pause()
	r.sched.Cancel(r.id)
}

// Done reports whether the countdown has reached zero. Completion side
// effects (sound, haptics) are the caller's one-time responsibility.
func (r *RestCountdown) Done() bool {
	return r.clock.Done()
}

// Paused reports whether the countdown is frozen.
func (r *RestCountdown) Paused() bool {
	return r.clock.Paused()
}

// Acknowledge cancels the backstop after the caller has handled
// completion in the foreground.
func (r *RestCountdown) Acknowledge() {
	r.sched.Cancel(r.id)
}
