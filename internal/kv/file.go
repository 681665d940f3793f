package kv

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"spawnkit/internal/spawn"
)

// DefaultFileQuota is the capacity applied when the config does not set
// one. It matches the fixed-size text storage the stored data originally
// lived in.
const DefaultFileQuota = 5 << 20 // 5 MiB

// FileStore persists the whole key space as one JSON object in a single
// file. Every write rewrites the file atomically (temp file + rename),
// so a crash mid-write leaves either the old blob or the new one, never
// a torn mix. A byte quota bounds the total size of keys and values;
// writes that would exceed it are rejected with the previous value kept.
// This implementation is safe for concurrent use.
type FileStore struct {
	path     string
	maxBytes int64
	mu       sync.Mutex
	values   map[string]string
}

// NewFileStore opens (or creates) a file-backed store at path. maxBytes
// of zero applies DefaultFileQuota.
func NewFileStore(path string, maxBytes int64) (*FileStore, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultFileQuota
	}
	s := &FileStore{
		path:     path,
		maxBytes: maxBytes,
		values:   make(map[string]string),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading store file: %w", err)
		}
		return s, nil
	}
	if len(data) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s.values); err != nil {
		return nil, fmt.Errorf("store file %s is not valid JSON: %w", path, err)
	}
	return s, nil
}

// Get returns the value for key.
func (s *FileStore) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok, nil
}

// Set stores value under key and persists the whole key space.
func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := int64(len(key) + len(value))
	for k, v := range s.values {
		if k == key {
			continue
		}
		total += int64(len(k) + len(v))
	}
	if total > s.maxBytes {
		return fmt.Errorf("store quota exceeded: %d bytes > %d", total, s.maxBytes)
	}

	prev, hadPrev := s.values[key]
	s.values[key] = value
	if err := s.persist(); err != nil {
		// Keep the in-memory view consistent with what is on disk.
		if hadPrev {
			s.values[key] = prev
		} else {
			delete(s.values, key)
		}
		return err
	}
	return nil
}

// Remove deletes key and persists. Removing an absent key is a no-op.
func (s *FileStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.values[key]
	if !ok {
		return nil
	}
	delete(s.values, key)
	if err := s.persist(); err != nil {
		s.values[key] = prev
		return err
	}
	return nil
}

// persist writes the whole map atomically. Callers must hold s.mu.
func (s *FileStore) persist() error {
	data, err := json.Marshal(s.values)
	if err != nil {
		return fmt.Errorf("encoding store: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating store directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".store-*.json")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing store file: %w", err)
	}
	return nil
}

// Close is a no-op: every mutation is already durable.
func (s *FileStore) Close() error { return nil }

// Compile-time check that FileStore implements spawn.KVStore
var _ spawn.KVStore = (*FileStore)(nil)
