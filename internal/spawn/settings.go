package spawn

import (
	"encoding/json"
	"fmt"

	"spawnkit/internal/model"
)

// SettingsRepository owns the "settings" object: a single JSON value
// rather than a collection, but with the same load/validate/self-heal
// discipline as the other repositories.
type SettingsRepository struct {
	kv     KVStore
	cache  *Cache
	logger Logger
}

// NewSettingsRepository creates a settings repository over the given store.
func NewSettingsRepository(kv KVStore, cache *Cache, logger Logger) *SettingsRepository {
	return &SettingsRepository{kv: kv, cache: cache, logger: logger}
}

// Get returns the stored settings. An absent key yields zero-value
// settings; a corrupted blob is wiped and replaced by the zero value.
func (r *SettingsRepository) Get() (model.Settings, error) {
	v, err := r.cache.Get(KeySettings, func() (any, error) {
		raw, found, err := r.kv.Get(KeySettings)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", KeySettings, err)
		}
		if !found || raw == "" {
			return model.Settings{}, nil
		}
		var s model.Settings
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			r.logger.Warn("corrupted settings, wiping key", "error", err)
			if rmErr := r.kv.Remove(KeySettings); rmErr != nil {
				return nil, fmt.Errorf("wiping corrupted %q: %w", KeySettings, rmErr)
			}
			return model.Settings{}, nil
		}
		if err := model.ValidateSettings(&s); err != nil {
			r.logger.Warn("invalid settings, substituting defaults", "error", err)
			return model.Settings{}, nil
		}
		return s, nil
	})
	if err != nil {
		return model.Settings{}, err
	}
	s, ok := v.(model.Settings)
	if !ok {
		return model.Settings{}, fmt.Errorf("cache entry for %q has unexpected type %T", KeySettings, v)
	}
	return s, nil
}

// Save stores the settings object whole.
func (r *SettingsRepository) Save(s model.Settings) error {
	if err := model.ValidateSettings(&s); err != nil {
		return &ValidationError{Kind: "settings", Err: err}
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	if err := r.kv.Set(KeySettings, string(data)); err != nil {
		r.cache.Invalidate(KeySettings)
		return &WriteError{Key: KeySettings, Err: err}
	}
	r.cache.Invalidate(KeySettings)
	return nil
}

// Clear wipes the settings key.
func (r *SettingsRepository) Clear() error {
	if err := r.kv.Remove(KeySettings); err != nil {
		return &WriteError{Key: KeySettings, Err: err}
	}
	r.cache.Invalidate(KeySettings)
	return nil
}
