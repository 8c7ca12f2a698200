package service

import (
	"sync"
	"time"
)

// RefreshState is the orchestrator's coarse lifecycle state
type RefreshState string

const (
	StateIdle       RefreshState = "idle"
	StateRefreshing RefreshState = "refreshing"
)

// RefreshStatus is a point-in-time view of refresh activity
type RefreshStatus struct {
	State           RefreshState  `json:"state"`
	LastAttempt     time.Time     `json:"last_attempt,omitempty"`
	LastSuccess     time.Time     `json:"last_success,omitempty"`
	LastError       string        `json:"last_error,omitempty"`
	LastErrorAt     time.Time     `json:"last_error_at,omitempty"`
	LastDuration    time.Duration `json:"last_duration"`
	TotalRefreshes  int           `json:"total_refreshes"`
	FailedRefreshes int           `json:"failed_refreshes"`
	JoinedRefreshes int           `json:"joined_refreshes"`
}

// Failed reports whether the most recent completed pass failed
func (s RefreshStatus) Failed() bool {
	return s.LastError != ""
}

// refreshTracker records refresh outcomes for status reporting
type refreshTracker struct {
	mu     sync.RWMutex
	status RefreshStatus
}

func newRefreshTracker() *refreshTracker {
	return &refreshTracker{status: RefreshStatus{State: StateIdle}}
}

func (t *refreshTracker) begin(at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status.State = StateRefreshing
	t.status.LastAttempt = at
	t.status.TotalRefreshes++
}

func (t *refreshTracker) succeed(at time.Time, duration time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status.State = StateIdle
	t.status.LastSuccess = at
	t.status.LastError = ""
	t.status.LastDuration = duration
}

func (t *refreshTracker) fail(at time.Time, err error, duration time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status.State = StateIdle
	t.status.LastError = err.Error()
	t.status.LastErrorAt = at
	t.status.LastDuration = duration
	t.status.FailedRefreshes++
}

func (t *refreshTracker) join() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status.JoinedRefreshes++
}

func (t *refreshTracker) snapshot() RefreshStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}
