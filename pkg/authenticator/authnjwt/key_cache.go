package authnjwt

import (
	"context"
	"sync"
	"time"
)

// keyCache caches fetched signing key material per cache key. Concurrent
// refreshes of the same key are serialized so a single fetch result is
// shared; distinct keys refresh independently. This is the one caching
// exception in the authentication core, and it is limited to remote key
// material — never roles, resources or validation results.
type keyCache struct {
	ttl time.Duration

	mu      sync.Mutex
	entries map[string]*keyCacheEntry
}

type keyCacheEntry struct {
	mu        sync.Mutex
	keys      map[string]interface{}
	fetchedAt time.Time
}

func newKeyCache(ttl time.Duration) *keyCache {
	return &keyCache{ttl: ttl, entries: make(map[string]*keyCacheEntry)}
}

// fetch returns the cached keys for cacheKey, refreshing through fetchFn
// when the entry is stale or force is set.
func (c *keyCache) fetch(
	ctx context.Context,
	cacheKey string,
	force bool,
	fetchFn func(ctx context.Context) (map[string]interface{}, error),
) (map[string]interface{}, error) {
	c.mu.Lock()
	entry, ok := c.entries[cacheKey]
	if !ok {
		entry = &keyCacheEntry{}
		c.entries[cacheKey] = entry
	}
	c.mu.Unlock()

	entry.mu.Lock()
	defer entry.mu.Unlock()

	fresh := entry.keys != nil && time.Since(entry.fetchedAt) < c.ttl
	if fresh && !force {
		return entry.keys, nil
	}

	keys, err := fetchFn(ctx)
	if err != nil {
		return nil, err
	}
	entry.keys = keys
	entry.fetchedAt = time.Now()
	return keys, nil
}
