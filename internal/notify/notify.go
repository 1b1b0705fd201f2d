// Package notify has the backstop notification schedulers.
package notify

import (
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/repvault/repvault/internal/contract"
)

// ExecScheduler delivers notifications by running an external command
// (e.g. notify-send) when the scheduled delay elapses. Delivery is
// fire-and-forget: the countdown never waits on it and never learns
// whether it fired.
type ExecScheduler struct {
	mu      sync.Mutex
	command string
	pending map[string]*time.Timer
}

var _ contract.NotificationScheduler = &ExecScheduler{} // Compile-time check

// NewExecScheduler creates a scheduler that runs the given command with
// the notification title and body as arguments.
func NewExecScheduler(command string) *ExecScheduler {
	return &ExecScheduler{
		command: command,
		pending: make(map[string]*time.Timer),
	}
}

// Schedule arms a one-shot timer for the given id, replacing any timer
// already pending under that id.
func (s *ExecScheduler) Schedule(id string, fireAfter time.Duration, title, body string) error {
	if s.command == "" {
		return fmt.Errorf("no notify command configured")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.pending[id]; ok {
		prev.Stop()
	}
	s.pending[id] = time.AfterFunc(fireAfter, func() {
		s.fire(id, title, body)
	})
	return nil
}

// Cancel stops the pending timer for id; no-op if nothing is pending.
func (s *ExecScheduler) Cancel(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if timer, ok := s.pending[id]; ok {
		timer.Stop()
		delete(s.pending, id)
	}
}

// fire runs the notify command. Errors are logged, never surfaced: the
// countdown's own state is the source of truth either way.
func (s *ExecScheduler) fire(id, title, body string) {
	s.mu.Lock()
	delete(s.pending, id)
	s.mu.Unlock()

	cmd := exec.Command(s.command, title, body)
	if err := cmd.Run(); err != nil {
		contract.LogWarn(fmt.Sprintf("notify command %q", s.command), err)
	}
}

// StderrScheduler writes notifications to stderr when they fire. Used
// as the fallback when no notify command is configured.
type StderrScheduler struct {
	mu      sync.Mutex
	pending map[string]*time.Timer
}

var _ contract.NotificationScheduler = &StderrScheduler{} // Compile-time check

// NewStderrScheduler creates the stderr-backed scheduler.
func NewStderrScheduler() *StderrScheduler {
	return &StderrScheduler{pending: make(map[string]*time.Timer)}
}

// Schedule arms a one-shot timer for the given id, replacing any timer
// already pending under that id.
func (s *StderrScheduler) Schedule(id string, fireAfter time.Duration, title, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.pending[id]; ok {
		prev.Stop()
	}
	s.pending[id] = time.AfterFunc(fireAfter, func() {
		s.mu.Lock()
		delete(s.pending, id)
		s.mu.Unlock()
		_, _ = fmt.Fprintf(os.Stderr, "\n🔔 %s: %s\n", title, body)
	})
	return nil
}

// Cancel stops the pending timer for id; no-op if nothing is pending.
func (s *StderrScheduler) Cancel(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if timer, ok := s.pending[id]; ok {
		timer.Stop()
		delete(s.pending, id)
	}
}

// ForCommand returns the exec scheduler when a command is configured
// and the stderr fallback otherwise.
func ForCommand(command string) contract.NotificationScheduler {
	if command == "" {
		return NewStderrScheduler()
	}
	return NewExecScheduler(command)
}
