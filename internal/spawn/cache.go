package spawn

import (
	"strings"
	"sync"
)

// Cache is an in-memory read-through cache keyed by logical key. There
// is no TTL: validity is solely a function of explicit invalidation by
// writers. A Get immediately following an Invalidate on the same key
// never returns the pre-invalidation value.
type Cache struct {
	mu      sync.Mutex
	entries map[string]any
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]any)}
}

// Get returns the cached value for key if present; otherwise it calls
// fetch, stores the result, and returns it. A fetch error is returned
// without populating the cache.
//
// The lock is held across fetch so a concurrent Get for the same key
// cannot observe a half-populated entry and fetch runs at most once per
// miss. Fetches are fast whole-collection reads from the local store, so
// the serialization is acceptable. fetch must not touch this cache;
// callers whose computation reads other cached keys use Peek and Put
// instead.
func (c *Cache) Get(key string, fetch func() (any, error)) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := c.entries[key]; ok {
		return v, nil
	}
	v, err := fetch()
	if err != nil {
		return nil, err
	}
	c.entries[key] = v
	return v, nil
}

// Peek returns the cached value without fetching on miss.
func (c *Cache) Peek(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

// Put stores a value directly, replacing any cached entry.
func (c *Cache) Put(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
}

// Invalidate removes one entry.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// InvalidatePrefix removes every entry whose key starts with prefix.
// Used for the per-placement sub-key family ("spawn:{id}:asset:").
func (c *Cache) InvalidatePrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
}

// InvalidateSuffix removes every entry whose key ends with suffix. Used
// to drop all placement sub-keys embedding one asset, across spawns.
func (c *Cache) InvalidateSuffix(suffix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if strings.HasSuffix(k, suffix) {
			delete(c.entries, k)
		}
	}
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// PlacementKey derives the cache-only sub-key for one spawn-asset
// placement. These keys are never persisted.
func PlacementKey(spawnID, assetID string) string {
	return "spawn:" + spawnID + ":asset:" + assetID
}

// SpawnPrefix is the invalidation prefix covering all placement sub-keys
// of one spawn.
func SpawnPrefix(spawnID string) string {
	return "spawn:" + spawnID + ":"
}

// AssetSuffix is the invalidation suffix covering every placement
// sub-key that embeds one asset, regardless of spawn.
func AssetSuffix(assetID string) string {
	return ":asset:" + assetID
}
