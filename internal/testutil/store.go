package testutil

import (
	"fmt"
	"sync"

	"spawnkit/internal/kv"
	"spawnkit/internal/spawn"
)

// NewTestStore creates a new in-memory key-value store for testing.
func NewTestStore() spawn.KVStore {
	return kv.NewMemoryStore()
}

// FaultStore wraps a KVStore and injects failures into writes. Used to
// exercise rollback and quota-failure paths.
type FaultStore struct {
	mu sync.Mutex

	inner spawn.KVStore

	// failSetAt fails exactly the Nth Set call (1-based) when > 0. The
	// counter includes calls made before it was configured.
	failSetAt int
	setCalls  int

	// failKeys fails every Set call for specific keys.
	failKeys map[string]bool
}

var _ spawn.KVStore = (*FaultStore)(nil)

// NewFaultStore wraps the given store. With no failures configured it is
// transparent.
func NewFaultStore(inner spawn.KVStore) *FaultStore {
	return &FaultStore{inner: inner, failKeys: make(map[string]bool)}
}

// FailSetAt makes exactly Set call number n (1-based) fail.
func (s *FaultStore) FailSetAt(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failSetAt = n
}

// FailKey makes every Set for the given key fail.
func (s *FaultStore) FailKey(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failKeys[key] = true
}

// SetCalls returns the number of Set calls observed so far.
func (s *FaultStore) SetCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setCalls
}

// ClearFaults removes all configured failures.
func (s *FaultStore) ClearFaults() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failSetAt = 0
	s.failKeys = make(map[string]bool)
}

func (s *FaultStore) Get(key string) (string, bool, error) {
	return s.inner.Get(key)
}

func (s *FaultStore) Set(key, value string) error {
	s.mu.Lock()
	s.setCalls++
	fail := s.failKeys[key] || (s.failSetAt > 0 && s.setCalls == s.failSetAt)
	s.mu.Unlock()

	if fail {
		return fmt.Errorf("injected write failure for key %q", key)
	}
	return s.inner.Set(key, value)
}

func (s *FaultStore) Remove(key string) error {
	return s.inner.Remove(key)
}

func (s *FaultStore) Close() error {
	return s.inner.Close()
}
