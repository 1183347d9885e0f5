package keyset

import (
	"crypto/rsa"
	"sync"
	"time"
)

// TTL is how long a fetched key set stays valid. Expiry is discovered lazily
// on access; there is no background refresh timer.
const TTL = time.Hour

// KeySet maps a key identifier to its imported RSA verification key.
// A KeySet belongs to exactly one cache entry for one provider domain.
type KeySet map[string]*rsa.PublicKey

// Entry is one cached key set together with the time it was fetched.
// Entries are replaced wholesale on refetch, never mutated in place.
type Entry struct {
	Keys      KeySet
	FetchedAt time.Time
}

// Cache stores one Entry per identity provider domain. Implementations must
// be safe for concurrent use. Clear exists so operators and tests can force
// the next verification to refetch key material.
type Cache interface {
	Get(domain string) (Entry, bool)
	Put(domain string, entry Entry)
	Clear()
}

// NewMemoryCache returns an in-memory Cache with no persistence across
// process restarts. Construct one per provider group; there is no package
// level shared instance.
func NewMemoryCache() Cache {
	return &memoryCache{entries: make(map[string]Entry)}
}

type memoryCache struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func (c *memoryCache) Get(domain string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[domain]
	return entry, ok
}

func (c *memoryCache) Put(domain string, entry Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[domain] = entry
}

func (c *memoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]Entry)
}
