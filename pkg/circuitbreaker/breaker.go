package circuitbreaker

import (
	"sync"
	"time"

	"github.com/whisperfi/whisperd/pkg/logger"
)

// Breaker is a fail-fast guard around an unreliable collaborator. It
// trips after threshold failures inside the failure window and rejects
// calls until the reset timeout elapses; the first call after that
// probes the collaborator again. It never retries on the caller's
// behalf.
type Breaker struct {
	mu           sync.Mutex
	threshold    int
	window       time.Duration
	resetTimeout time.Duration
	failures     int
	lastFailure  time.Time
	open         bool
	openedAt     time.Time
	logger       logger.Logger
	now          func() time.Time
}

// New creates a breaker that trips after threshold failures within
// window and stays open for resetTimeout
func New(threshold int, window, resetTimeout time.Duration, log logger.Logger) *Breaker {
	if log == nil {
		log = &logger.EmptyLogger{}
	}
	return &Breaker{
		threshold:    threshold,
		window:       window,
		resetTimeout: resetTimeout,
		logger:       log,
		now:          time.Now,
	}
}

// Allow reports whether a call may proceed. An open breaker half-opens
// once the reset timeout has elapsed.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.open {
		return true
	}
	if b.now().Sub(b.openedAt) > b.resetTimeout {
		b.logger.Debug("Circuit half-open, probing again")
		b.open = false
		b.failures = 0
		return true
	}
	return false
}

// Failure records a failed call and trips the breaker at the threshold
func (b *Breaker) Failure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	if now.Sub(b.lastFailure) > b.window {
		b.failures = 0
	}
	b.failures++
	b.lastFailure = now

	if b.failures >= b.threshold && !b.open {
		b.open = true
		b.openedAt = now
		b.logger.Info("Circuit opened after %d failures", b.failures)
	}
}

// Success clears the failure streak and closes the breaker
func (b *Breaker) Success() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures = 0
	b.open = false
}

// Open reports whether the breaker is currently rejecting calls
func (b *Breaker) Open() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.open && b.now().Sub(b.openedAt) > b.resetTimeout {
		return false
	}
	return b.open
}
