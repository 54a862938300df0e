package dispatch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNonceCacheRelease(t *testing.T) {
	nc := NewNonceCache()
	data := nc.chain(1)
	data.current = 5
	data.lastSync = time.Now()

	// Releasing the most recent allocation rolls the counter back
	nc.Release(1, 4)
	assert.Equal(t, uint64(4), data.current)

	// Releasing anything older is a no-op
	nc.Release(1, 1)
	assert.Equal(t, uint64(4), data.current)
}

func TestNonceCacheInvalidate(t *testing.T) {
	nc := NewNonceCache()
	data := nc.chain(1)
	data.lastSync = time.Now()

	nc.Invalidate(1)
	assert.True(t, data.lastSync.IsZero())
}

func TestNonceCacheChainsAreIndependent(t *testing.T) {
	nc := NewNonceCache()
	nc.chain(1).current = 10
	nc.chain(8453).current = 3

	nc.Release(1, 9)
	assert.Equal(t, uint64(9), nc.chain(1).current)
	assert.Equal(t, uint64(3), nc.chain(8453).current)
}
