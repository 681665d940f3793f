package synctarget

import (
	"fmt"

	"spawnkit/internal/config"
	"spawnkit/internal/spawn"
)

// NewTargetFromConfig creates a SyncTarget implementation based on the
// sync config type. Type "none" yields no target and no error.
func NewTargetFromConfig(cfg config.SyncConfig) (spawn.SyncTarget, error) {
	switch cfg.Type {
	case "", "none":
		return nil, nil
	case "memory":
		return NewMemoryTarget(cfg.Name), nil
	case "filesystem":
		if cfg.FSRoot == "" {
			return nil, fmt.Errorf("filesystem target requires fs_root to be set")
		}
		return NewFileSystemTarget(cfg.Name, cfg.FSRoot)
	case "s3":
		return NewS3Target(cfg)
	default:
		return nil, fmt.Errorf("unknown sync target type: %s", cfg.Type)
	}
}
