package articles

import (
	"sync"
	"time"
)

// MetaCache is a small TTL cache for metadata that is expensive to
// recompute (distinct tags, per-category counts, statistics). It trades a
// bounded staleness window for avoiding a full-table scan on every
// request. Invalidate is the manual hook used after scrape runs.
type MetaCache struct {
	ttl     time.Duration
	mu      sync.RWMutex
	entries map[string]metaEntry
}

type metaEntry struct {
	value    any
	storedAt time.Time
}

func NewMetaCache(ttl time.Duration) *MetaCache {
	return &MetaCache{
		ttl:     ttl,
		entries: make(map[string]metaEntry),
	}
}

func (c *MetaCache) Get(key string) (any, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if time.Since(entry.storedAt) > c.ttl {
		return nil, false
	}
	return entry.value, true
}

func (c *MetaCache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = metaEntry{value: value, storedAt: time.Now()}
}

// Invalidate drops all cached entries.
func (c *MetaCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]metaEntry)
}
