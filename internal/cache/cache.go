package cache

import (
	"sync"
	"time"
)

// Cache is a process-local map with a fixed per-entry TTL. Expired entries are
// dropped lazily on read and when the map grows past maxEntries.
type Cache struct {
	mu         sync.RWMutex
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
	m          map[string]entry
}

type entry struct {
	val any
	exp time.Time
}

const defaultMaxEntries = 10000

func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}

	return &Cache{
		ttl:        ttl,
		maxEntries: defaultMaxEntries,
		now:        time.Now,
		m:          make(map[string]entry),
	}
}

func (c *Cache) Get(key string) (any, bool) {
	now := c.now()
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if now.After(e.exp) {
		c.mu.Lock()
		// re-check, a concurrent Set may have refreshed it
		if cur, ok := c.m[key]; ok && now.After(cur.exp) {
			delete(c.m, key)
		}
		c.mu.Unlock()
		return nil, false
	}

	return e.val, true
}

func (c *Cache) Set(key string, val any) {
	now := c.now()
	c.mu.Lock()
	if len(c.m) >= c.maxEntries {
		c.evictExpiredLocked(now)
	}
	if len(c.m) >= c.maxEntries {
		// still full of live entries: start over rather than grow without bound
		c.m = make(map[string]entry)
	}
	c.m[key] = entry{val: val, exp: now.Add(c.ttl)}
	c.mu.Unlock()
}

func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.m, key)
	c.mu.Unlock()
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}

func (c *Cache) evictExpiredLocked(now time.Time) {
	for k, e := range c.m {
		if now.After(e.exp) {
			delete(c.m, k)
		}
	}
}
