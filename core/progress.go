package core

import "sync"

// Status values for a build session.
const (
	StatusIdle      = "idle"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusError     = "error"
)

// Progress is a point-in-time snapshot of a session, safe to hand to any
// number of concurrent pollers.
type Progress struct {
	Status        string `json:"status"`
	Iteration     int    `json:"iteration"`
	MaxIterations int    `json:"max_iterations"`
	Output        string `json:"output"`
	Completed     bool   `json:"completed"`
}

// Tracker is the shared progress cell. The engine goroutine is its sole
// writer; readers obtain consistent snapshots and never observe a torn
// update. Once a session reaches a terminal state (Completed true) the cell
// is frozen until the next Reset.
type Tracker struct {
	mu    sync.RWMutex
	state Progress
}

// NewTracker returns an idle tracker with the given iteration budget.
func NewTracker(maxIterations int) *Tracker {
	return &Tracker{state: Progress{Status: StatusIdle, MaxIterations: maxIterations}}
}

// Snapshot returns a copy of the current progress state.
func (t *Tracker) Snapshot() Progress {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// Busy reports whether a session is currently running.
func (t *Tracker) Busy() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state.Status == StatusRunning
}

// Reset transitions the cell into a fresh running session. This is the only
// way out of a terminal state.
func (t *Tracker) Reset(maxIterations int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = Progress{Status: StatusRunning, MaxIterations: maxIterations}
}

// SetIteration records the current 1-based iteration. The counter never
// decreases within a session.
func (t *Tracker) SetIteration(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.Completed || n < t.state.Iteration {
		return
	}
	t.state.Iteration = n
}

// SetOutput replaces the accumulated display output.
func (t *Tracker) SetOutput(output string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.Completed {
		return
	}
	t.state.Output = output
}

// Complete marks the session finished. Terminal: later mutations are no-ops.
func (t *Tracker) Complete() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.Completed {
		return
	}
	t.state.Status = StatusCompleted
	t.state.Completed = true
}

// Fail marks the session failed with a diagnostic message. Terminal.
func (t *Tracker) Fail(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.Completed {
		return
	}
	t.state.Status = StatusError
	t.state.Output = msg
	t.state.Completed = true
}
