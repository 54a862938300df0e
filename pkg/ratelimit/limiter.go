package ratelimit

import (
	"sync"
	"time"
)

// UsageStats is a snapshot of the limiter's current window
type UsageStats struct {
	CallCount   int     `json:"callCount"`
	Limit       int     `json:"limit"`
	Remaining   int     `json:"remaining"`
	WindowStart int64   `json:"windowStart"` // unix milliseconds
	WindowHours float64 `json:"windowHours"`
}

// ErrRateLimited is returned by Check when the call budget is spent.
// It carries the stats at the time of rejection so callers can surface
// them to the user.
type ErrRateLimited struct {
	Stats UsageStats
}

func (e *ErrRateLimited) Error() string {
	return "AI usage limit reached. Please try again later."
}

// Limiter caps oracle calls to a fixed budget per rolling window.
// A window of zero hours never resets: the budget is for the process
// lifetime. Safe for concurrent use.
type Limiter struct {
	mu          sync.Mutex
	limit       int
	windowHours float64
	callCount   int
	windowStart time.Time
	now         func() time.Time
}

// NewLimiter creates a limiter allowing limit calls per windowHours
func NewLimiter(limit int, windowHours float64) *Limiter {
	l := &Limiter{
		limit:       limit,
		windowHours: windowHours,
		now:         time.Now,
	}
	l.windowStart = l.now()
	return l
}

// maybeResetWindow clears the counter when the window has elapsed.
// Caller must hold the mutex.
func (l *Limiter) maybeResetWindow() {
	if l.windowHours <= 0 {
		return
	}
	window := time.Duration(l.windowHours * float64(time.Hour))
	if l.now().Sub(l.windowStart) >= window {
		l.callCount = 0
		l.windowStart = l.now()
	}
}

// statsLocked builds a snapshot. Caller must hold the mutex.
func (l *Limiter) statsLocked() UsageStats {
	remaining := l.limit - l.callCount
	if remaining < 0 {
		remaining = 0
	}
	return UsageStats{
		CallCount:   l.callCount,
		Limit:       l.limit,
		Remaining:   remaining,
		WindowStart: l.windowStart.UnixMilli(),
		WindowHours: l.windowHours,
	}
}

// Check reports whether another call is allowed. Returns *ErrRateLimited
// when the budget is spent. Call before each oracle call.
func (l *Limiter) Check() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.maybeResetWindow()
	if l.callCount >= l.limit {
		return &ErrRateLimited{Stats: l.statsLocked()}
	}
	return nil
}

// Record counts one call against the budget. Call after each successful
// oracle call.
func (l *Limiter) Record() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.maybeResetWindow()
	l.callCount++
}

// Stats returns the current usage snapshot
func (l *Limiter) Stats() UsageStats {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.maybeResetWindow()
	return l.statsLocked()
}

// Reset clears the counter and restarts the window
func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.callCount = 0
	l.windowStart = l.now()
}
