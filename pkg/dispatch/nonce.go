package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// nonceSyncInterval bounds how stale the local counter may get before it
// is re-read from the chain
const nonceSyncInterval = 5 * time.Minute

// NonceCache tracks the next nonce per chain so consecutive sends from
// the same account do not race the network's pending view
type NonceCache struct {
	chains map[int]*chainNonce
	mu     sync.RWMutex
}

type chainNonce struct {
	current  uint64
	lastSync time.Time
	mu       sync.Mutex
}

// NewNonceCache creates an empty cache
func NewNonceCache() *NonceCache {
	return &NonceCache{
		chains: make(map[int]*chainNonce),
	}
}

func (nc *NonceCache) chain(chainID int) *chainNonce {
	nc.mu.RLock()
	data, exists := nc.chains[chainID]
	nc.mu.RUnlock()
	if exists {
		return data
	}

	nc.mu.Lock()
	defer nc.mu.Unlock()
	if data, exists = nc.chains[chainID]; exists {
		return data
	}
	data = &chainNonce{}
	nc.chains[chainID] = data
	return data
}

// Next reserves and returns the next nonce for the account on a chain,
// re-syncing with the network when the local view is stale
func (nc *NonceCache) Next(ctx context.Context, chainID int, client *ethclient.Client, address common.Address) (uint64, error) {
	data := nc.chain(chainID)
	data.mu.Lock()
	defer data.mu.Unlock()

	if data.lastSync.IsZero() || time.Since(data.lastSync) > nonceSyncInterval {
		nonce, err := client.PendingNonceAt(ctx, address)
		if err != nil {
			return 0, fmt.Errorf("failed to get pending nonce: %v", err)
		}
		if nonce > data.current {
			data.current = nonce
		}
		data.lastSync = time.Now()
	}

	nonce := data.current
	data.current++
	return nonce, nil
}

// Release hands a nonce back after a failed send so the next transaction
// can reuse it
func (nc *NonceCache) Release(chainID int, nonce uint64) {
	data := nc.chain(chainID)
	data.mu.Lock()
	defer data.mu.Unlock()

	if data.current == nonce+1 {
		data.current = nonce
	}
}

// Invalidate forces the next allocation on a chain to re-sync with the
// network. Used after handing raw bytes to an external submitter whose
// outcome we cannot observe.
func (nc *NonceCache) Invalidate(chainID int) {
	data := nc.chain(chainID)
	data.mu.Lock()
	defer data.mu.Unlock()

	data.lastSync = time.Time{}
}
