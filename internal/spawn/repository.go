package spawn

import (
	"encoding/json"
	"fmt"
)

// Shared load/save plumbing for the whole-collection repositories.
//
// The backing store has no partial-update support, so every repository
// follows the same cycle: read the raw blob, decode, validate record by
// record, mutate the full collection, serialize, write back, invalidate
// the cache key. Writes are last-writer-wins.

// loadCollection reads and decodes the collection under key, going
// through the cache. Decoded records are validated individually; invalid
// ones are dropped with a diagnostic. If the whole blob fails to decode
// as a slice, the key is wiped and an empty collection is returned:
// self-healing against corruption at the cost of losing the corrupted
// slice.
func loadCollection[T any](kv KVStore, cache *Cache, logger Logger, key, kind string, validate func(*T) error) ([]T, error) {
	v, err := cache.Get(key, func() (any, error) {
		raw, found, err := kv.Get(key)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", key, err)
		}
		if !found || raw == "" {
			return []T{}, nil
		}

		var records []T
		if err := json.Unmarshal([]byte(raw), &records); err != nil {
			logger.Warn("corrupted collection, wiping key", "key", key, "error", err)
			if rmErr := kv.Remove(key); rmErr != nil {
				return nil, fmt.Errorf("wiping corrupted %q: %w", key, rmErr)
			}
			return []T{}, nil
		}

		kept := records[:0]
		for i := range records {
			if err := validate(&records[i]); err != nil {
				logger.Warn("dropping invalid record", "key", key, "kind", kind, "error", err)
				continue
			}
			kept = append(kept, records[i])
		}
		return kept, nil
	})
	if err != nil {
		return nil, err
	}
	records, ok := v.([]T)
	if !ok {
		return nil, fmt.Errorf("cache entry for %q has unexpected type %T", key, v)
	}
	return records, nil
}

// saveCollection serializes the full collection, writes it back, and
// invalidates the cache key so the next read re-decodes the stored
// value. A rejected write surfaces as a WriteError and leaves the cache
// untouched only if the store guarantees the old value survived; the
// invalidation happens regardless so no stale entry can outlive a
// partially-applied backend.
func saveCollection[T any](kv KVStore, cache *Cache, key string, records []T) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encoding %q: %w", key, err)
	}
	if err := kv.Set(key, string(data)); err != nil {
		cache.Invalidate(key)
		return &WriteError{Key: key, Err: err}
	}
	cache.Invalidate(key)
	return nil
}
