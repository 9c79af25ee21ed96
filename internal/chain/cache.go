package chain

import (
	"sync"
	"time"

	"github.com/polyshadow/engine/internal/store"
)

// NonceCache is a TTL-bounded cache of wallet transaction counts.
// It absorbs repeated polls on the same hot wallet within one
// monitoring window without re-querying the RPC.
type NonceCache struct {
	mu      sync.RWMutex
	entries map[string]store.AgeRecord
	ttl     time.Duration
}

// DefaultNonceTTL is the default freshness window for cached nonces.
const DefaultNonceTTL = 10 * time.Minute

// NewNonceCache creates a NonceCache with the given TTL.
func NewNonceCache(ttl time.Duration) *NonceCache {
	if ttl <= 0 {
		ttl = DefaultNonceTTL
	}
	return &NonceCache{
		entries: make(map[string]store.AgeRecord),
		ttl:     ttl,
	}
}

// Get returns the cached nonce for wallet if the entry is within TTL.
// Expired entries report a miss; the caller re-resolves and calls Put.
func (c *NonceCache) Get(wallet string, now time.Time) (uint64, bool) {
	c.mu.RLock()
	rec, ok := c.entries[wallet]
	c.mu.RUnlock()

	if !ok || now.Sub(rec.ObservedAt) >= c.ttl {
		return 0, false
	}
	return rec.Nonce, true
}

// Put stores a freshly observed nonce for wallet.
func (c *NonceCache) Put(wallet string, nonce uint64, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[wallet] = store.AgeRecord{
		Wallet:     wallet,
		Nonce:      nonce,
		ObservedAt: now,
	}
}

// Len returns the number of entries, including any not yet swept.
func (c *NonceCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Cleanup removes expired entries. Should be called periodically to
// prevent unbounded growth; Get never returns expired entries either way.
func (c *NonceCache) Cleanup(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for wallet, rec := range c.entries {
		if now.Sub(rec.ObservedAt) >= c.ttl {
			delete(c.entries, wallet)
		}
	}
}
