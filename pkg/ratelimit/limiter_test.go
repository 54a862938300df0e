package ratelimit

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiterAllowsUpToLimit(t *testing.T) {
	l := NewLimiter(3, 0)

	for i := 0; i < 3; i++ {
		require.NoError(t, l.Check())
		l.Record()
	}

	err := l.Check()
	require.Error(t, err)

	var rateErr *ErrRateLimited
	require.True(t, errors.As(err, &rateErr))
	assert.Equal(t, 3, rateErr.Stats.CallCount)
	assert.Equal(t, 3, rateErr.Stats.Limit)
	assert.Equal(t, 0, rateErr.Stats.Remaining)
}

func TestLimiterStats(t *testing.T) {
	l := NewLimiter(10, 0)
	l.Record()
	l.Record()

	stats := l.Stats()
	assert.Equal(t, 2, stats.CallCount)
	assert.Equal(t, 10, stats.Limit)
	assert.Equal(t, 8, stats.Remaining)
	assert.Equal(t, 0.0, stats.WindowHours)
	assert.Greater(t, stats.WindowStart, int64(0))
}

func TestLimiterZeroWindowNeverResets(t *testing.T) {
	l := NewLimiter(1, 0)
	start := time.Now()
	l.now = func() time.Time { return start.Add(1000 * time.Hour) }

	l.Record()
	require.Error(t, l.Check())
}

func TestLimiterWindowResets(t *testing.T) {
	l := NewLimiter(1, 1)
	start := l.windowStart

	l.Record()
	require.Error(t, l.Check())

	// Advance past the window
	l.now = func() time.Time { return start.Add(61 * time.Minute) }
	require.NoError(t, l.Check())

	stats := l.Stats()
	assert.Equal(t, 0, stats.CallCount)
}

func TestLimiterReset(t *testing.T) {
	l := NewLimiter(1, 0)
	l.Record()
	require.Error(t, l.Check())

	l.Reset()
	require.NoError(t, l.Check())
	assert.Equal(t, 0, l.Stats().CallCount)
}

func TestLimiterConcurrentAccess(t *testing.T) {
	l := NewLimiter(1000, 0)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				if err := l.Check(); err == nil {
					l.Record()
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1000, l.Stats().CallCount)
}
