// internal/identity/cache.go
package identity

import (
	"container/list"
	"sync"
	"time"
)

// sessionCache is a TTL-bounded LRU map from credential keys to resolved
// identities. Stale entries are evicted lazily on read; the capacity cap
// bounds growth under sustained traffic with many distinct identities.
type sessionCache struct {
	mu       sync.Mutex
	ttl      time.Duration
	capacity int
	entries  map[string]*list.Element
	order    *list.List

	// now is injectable for tests
	now func() time.Time
}

type sessionEntry struct {
	key       string
	identity  *Identity
	expiresAt time.Time
}

// newSessionCache creates a session cache with the given freshness
// window and capacity
func newSessionCache(ttl time.Duration, capacity int) *sessionCache {
	return &sessionCache{
		ttl:      ttl,
		capacity: capacity,
		entries:  make(map[string]*list.Element, capacity),
		order:    list.New(),
		now:      time.Now,
	}
}

// get returns the cached identity for key, treating entries older than
// the TTL as absent
func (c *sessionCache) get(key string) (*Identity, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	entry := elem.Value.(*sessionEntry)
	if c.now().After(entry.expiresAt) {
		// Stale entry, evict lazily
		c.order.Remove(elem)
		delete(c.entries, key)
		return nil, false
	}
	c.order.MoveToFront(elem)
	return entry.identity, true
}

// put stores the identity for key, evicting the least recently used
// entry when the cache is full
func (c *sessionCache) put(key string, ident *Identity) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.now().Add(c.ttl)
	if elem, ok := c.entries[key]; ok {
		entry := elem.Value.(*sessionEntry)
		entry.identity = ident
		entry.expiresAt = expiresAt
		c.order.MoveToFront(elem)
		return
	}

	for c.order.Len() >= c.capacity {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*sessionEntry).key)
	}

	elem := c.order.PushFront(&sessionEntry{
		key:       key,
		identity:  ident,
		expiresAt: expiresAt,
	})
	c.entries[key] = elem
}

// invalidate removes the entry for key, if present
func (c *sessionCache) invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		c.order.Remove(elem)
		delete(c.entries, key)
	}
}

// len returns the current number of entries, stale ones included
func (c *sessionCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
