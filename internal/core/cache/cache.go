// Package cache provides the short-TTL session resolution cache.
//
// Entries are keyed by a hash of the request credentials and hold the
// resolved identity (or its confirmed absence). Eviction is bounded and
// runs in insertion order: once an insert pushes the cache past capacity,
// the oldest-inserted key is dropped. This is deliberately not LRU — the
// behavior is inherited from the system this gateway fronts and a hot key
// inserted early will still be evicted first.
package cache

import (
	"sync"
	"time"

	"github.com/duynhne/auth-gateway/internal/core/domain"
)

const (
	// DefaultTTL is how long a resolution stays valid before the next
	// request re-derives it from the backend.
	DefaultTTL = 30 * time.Second

	// DefaultMaxEntries bounds the cache size after eviction.
	DefaultMaxEntries = 100
)

type entry struct {
	identity   *domain.Identity
	insertedAt time.Time
}

// Cache memoizes session resolutions per credential hash. Safe for
// concurrent use; last-write-wins per key, which is acceptable because
// entries are idempotent re-derivations of the same backend truth.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	max     int
	entries map[string]*entry
	order   []string // keys in insertion order, oldest first

	now func() time.Time // overridable in tests
}

// New creates a Cache with the given TTL and capacity. Non-positive values
// fall back to the defaults.
func New(ttl time.Duration, maxEntries int) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Cache{
		ttl:     ttl,
		max:     maxEntries,
		entries: make(map[string]*entry, maxEntries+1),
		order:   make([]string, 0, maxEntries+1),
		now:     time.Now,
	}
}

// Get returns the cached resolution for the credential hash. The second
// return value is false on a miss or when the entry has aged past the TTL.
// Note that (nil, true) is a valid hit: a confirmed-unauthenticated
// resolution is cached like any other.
//
// Expired entries are not removed here; they are overwritten by the Put
// that follows the re-resolution.
func (c *Cache) Get(credentialHash string) (*domain.Identity, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[credentialHash]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.insertedAt) >= c.ttl {
		return nil, false
	}
	return e.identity, true
}

// Put stores the resolution for the credential hash. Overwriting an
// existing key refreshes its timestamp but keeps its original insertion
// position. When an insert pushes the size past capacity, the
// oldest-inserted key is evicted, leaving exactly max entries.
func (c *Cache) Put(credentialHash string, identity *domain.Identity) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[credentialHash]; ok {
		e.identity = identity
		e.insertedAt = c.now()
		return
	}

	c.entries[credentialHash] = &entry{identity: identity, insertedAt: c.now()}
	c.order = append(c.order, credentialHash)

	if len(c.entries) > c.max {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
}

// Len returns the current number of entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
