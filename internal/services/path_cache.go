package services

import (
	"logistics-engine/internal/domain"
	"logistics-engine/internal/platform/obs"
	"sync"
)

type pathKey struct {
	source int64
	target int64
}

// cachedPath records a query result. A nil path is a cached "no route".
type cachedPath struct {
	path *domain.Path
}

// PathCache memoises shortest path results per (source, target) pair.
//
// Entries are either valid or absent: there is no TTL and no per-entry
// eviction. Any mutation of the world wipes the whole cache via Invalidate.
// Size is bounded in practice by the number of node pairs.
type PathCache struct {
	mu      sync.RWMutex
	entries map[pathKey]cachedPath
}

func NewPathCache() *PathCache {
	return &PathCache{entries: make(map[pathKey]cachedPath)}
}

// Get returns a copy of the cached result. ok is false when the pair has
// not been computed since the last invalidation.
func (c *PathCache) Get(source, target int64) (path *domain.Path, ok bool) {
	c.mu.RLock()
	e, ok := c.entries[pathKey{source, target}]
	c.mu.RUnlock()

	if !ok {
		obs.PathCacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}
	obs.PathCacheLookups.WithLabelValues("hit").Inc()
	return e.path.Clone(), true
}

// Put stores a result; path may be nil to remember that no route exists.
func (c *PathCache) Put(source, target int64, path *domain.Path) {
	c.mu.Lock()
	c.entries[pathKey{source, target}] = cachedPath{path: path.Clone()}
	c.mu.Unlock()
}

// Invalidate drops every entry.
func (c *PathCache) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[pathKey]cachedPath)
	c.mu.Unlock()
	obs.PathCacheInvalidations.Inc()
}

// Len returns the number of cached pairs.
func (c *PathCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
