package kv

import (
	"fmt"
	"sync"

	"spawnkit/internal/spawn"
)

// MemoryStore is an in-memory implementation of the KVStore interface,
// useful for tests and ephemeral sessions. An optional byte quota makes
// it mimic the capacity behavior of the durable backends.
// This implementation is safe for concurrent use.
type MemoryStore struct {
	mu       sync.RWMutex
	values   map[string]string
	maxBytes int64 // 0 means unlimited
}

// NewMemoryStore creates an empty in-memory store with no quota.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// NewMemoryStoreWithQuota creates an in-memory store that rejects writes
// once the total size of keys and values would exceed maxBytes.
func NewMemoryStoreWithQuota(maxBytes int64) *MemoryStore {
	return &MemoryStore{values: make(map[string]string), maxBytes: maxBytes}
}

// Get returns the value for key.
func (m *MemoryStore) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

// Set stores value under key. A write that would exceed the quota is
// rejected and the previous value is kept.
func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.maxBytes > 0 {
		total := int64(len(key) + len(value))
		for k, v := range m.values {
			if k == key {
				continue
			}
			total += int64(len(k) + len(v))
		}
		if total > m.maxBytes {
			return fmt.Errorf("store quota exceeded: %d bytes > %d", total, m.maxBytes)
		}
	}

	m.values[key] = value
	return nil
}

// Remove deletes key. Removing an absent key is a no-op.
func (m *MemoryStore) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error { return nil }

// Len returns the number of stored keys.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values)
}

// Compile-time check that MemoryStore implements spawn.KVStore
var _ spawn.KVStore = (*MemoryStore)(nil)
