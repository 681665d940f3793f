package kv

import (
	"fmt"
	"path/filepath"

	"spawnkit/internal/config"
	"spawnkit/internal/spawn"
)

// NewStoreFromConfig creates a KVStore implementation based on the store
// config type.
func NewStoreFromConfig(cfg config.StoreConfig) (spawn.KVStore, error) {
	switch cfg.Type {
	case "memory":
		if cfg.MaxBytes > 0 {
			return NewMemoryStoreWithQuota(cfg.MaxBytes), nil
		}
		return NewMemoryStore(), nil
	case "file":
		if cfg.Path == "" {
			return nil, fmt.Errorf("file store requires path to be set")
		}
		return NewFileStore(cfg.Path, cfg.MaxBytes)
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("sqlite store requires data_dir to be set")
		}
		return NewSQLiteStore(filepath.Join(cfg.DataDir, "spawnkit.db"))
	default:
		return nil, fmt.Errorf("unknown store type: %s", cfg.Type)
	}
}
