package synctarget

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"spawnkit/internal/spawn"
)

// MemoryTarget is an in-memory implementation of the SyncTarget
// interface, useful for testing. This implementation is safe for
// concurrent use.
type MemoryTarget struct {
	name    string
	mu      sync.RWMutex
	bundles map[string][]byte
}

// NewMemoryTarget creates a new in-memory target with the given name.
func NewMemoryTarget(name string) *MemoryTarget {
	return &MemoryTarget{name: name, bundles: make(map[string][]byte)}
}

// PutBundle stores a named bundle.
func (m *MemoryTarget) PutBundle(name string, r io.Reader, size int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read bundle: %w", err)
	}
	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.bundles[name] = data
	return nil
}

// GetBundle retrieves a named bundle.
func (m *MemoryTarget) GetBundle(name string, w io.Writer) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.bundles[name]
	if !ok {
		return fmt.Errorf("bundle not found: %s", name)
	}
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write bundle: %w", err)
	}
	return nil
}

// ValidateSetup always succeeds for the in-memory target.
func (m *MemoryTarget) ValidateSetup() error { return nil }

// Compile-time check that MemoryTarget implements spawn.SyncTarget
var _ spawn.SyncTarget = (*MemoryTarget)(nil)
