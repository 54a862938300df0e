package circuitbreaker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBreakerTripsAtThreshold(t *testing.T) {
	b := New(3, time.Minute, time.Minute, nil)

	b.Failure()
	b.Failure()
	assert.True(t, b.Allow())
	assert.False(t, b.Open())

	b.Failure()
	assert.False(t, b.Allow())
	assert.True(t, b.Open())
}

func TestBreakerSuccessCloses(t *testing.T) {
	b := New(2, time.Minute, time.Minute, nil)

	b.Failure()
	b.Failure()
	assert.False(t, b.Allow())

	b.Success()
	assert.True(t, b.Allow())
	assert.False(t, b.Open())
}

func TestBreakerHalfOpensAfterTimeout(t *testing.T) {
	b := New(1, time.Minute, 50*time.Millisecond, nil)
	base := time.Now()
	b.now = func() time.Time { return base }

	b.Failure()
	assert.False(t, b.Allow())

	b.now = func() time.Time { return base.Add(time.Second) }
	assert.True(t, b.Allow())

	// A fresh failure after probing trips it again immediately
	b.Failure()
	assert.False(t, b.Allow())
}

func TestBreakerWindowResetsStreak(t *testing.T) {
	b := New(2, 100*time.Millisecond, time.Minute, nil)
	base := time.Now()
	b.now = func() time.Time { return base }

	b.Failure()
	b.now = func() time.Time { return base.Add(time.Second) }
	b.Failure()

	// The two failures fall in different windows
	assert.True(t, b.Allow())
}
