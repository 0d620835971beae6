// Package timer provides elapsed-time tracking for multi-stage CLI workflows.
//
// A Timer measures the total time since Start and the time since the most
// recent stage boundary. Success notifications use both values to print a
// per-stage and cumulative timing block.
package timer

import (
	"sync"
	"time"
)

// Timer tracks total and per-stage elapsed time for a command execution.
type Timer interface {
	// Start begins timing. Calling Start again resets the timer.
	Start()

	// NewStage marks the beginning of a new stage. Subsequent GetTiming calls
	// report stage time relative to this boundary.
	NewStage()

	// GetTiming returns the total elapsed time since Start and the elapsed
	// time since the last stage boundary (or Start when no stage was marked).
	GetTiming() (total, stage time.Duration)
}

// New creates a Timer backed by the wall clock.
func New() Timer {
	return &clockTimer{}
}

type clockTimer struct {
	mu         sync.Mutex
	startedAt  time.Time
	stageBegan time.Time
}

func (t *clockTimer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	t.startedAt = now
	t.stageBegan = now
}

func (t *clockTimer) NewStage() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stageBegan = time.Now()
}

func (t *clockTimer) GetTiming() (time.Duration, time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.startedAt.IsZero() {
		return 0, 0
	}

	now := time.Now()

	return now.Sub(t.startedAt), now.Sub(t.stageBegan)
}
