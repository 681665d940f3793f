package model

import "time"

// AssetType classifies a MediaAsset. The type is fixed at creation.
type AssetType string

const (
	AssetImage AssetType = "image"
	AssetVideo AssetType = "video"
	AssetAudio AssetType = "audio"
)

// MediaAsset is a media file or URL that can be placed inside spawns.
// The ID is unique across the asset collection.
type MediaAsset struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Path       string            `json:"path"` // filesystem path or URL
	IsURL      bool              `json:"isUrl"`
	Type       AssetType         `json:"type"`
	Properties PartialProperties `json:"properties"` // type-specific playback defaults
}

// SpawnAsset is the placement of one MediaAsset inside one Spawn.
// AssetID is a weak reference: it is looked up, never owned. When the
// referenced asset is deleted the placement is deleted with it (cascade).
type SpawnAsset struct {
	ID        string    `json:"id"`
	AssetID   string    `json:"assetId"`
	Order     int       `json:"order"` // dense 0..n-1 within the spawn
	Enabled   bool      `json:"enabled"`
	Overrides Overrides `json:"overrides"`
}

// Overrides are the per-placement adjustments attached to a SpawnAsset.
// Duration is in milliseconds; nil means "use the spawn's duration".
type Overrides struct {
	Duration   *int64            `json:"duration,omitempty"`
	Properties PartialProperties `json:"properties"`
}

// Spawn is a configured overlay event: a trigger, a duration, and an
// ordered list of asset placements.
type Spawn struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"` // unique within the owning profile, case-insensitive
	Description       string            `json:"description"`
	Enabled           bool              `json:"enabled"`
	Trigger           Trigger           `json:"trigger"`
	Duration          int64             `json:"duration"` // milliseconds
	Assets            []SpawnAsset      `json:"assets"`
	DefaultProperties DefaultProperties `json:"defaultProperties"`
	Order             int               `json:"order"` // dense 0..n-1 within the profile
	LastModified      time.Time         `json:"lastModified"`
}

// FindAsset returns the placement with the given id, or nil.
func (s *Spawn) FindAsset(spawnAssetID string) *SpawnAsset {
	for i := range s.Assets {
		if s.Assets[i].ID == spawnAssetID {
			return &s.Assets[i]
		}
	}
	return nil
}

// SpawnProfile is a named set of spawns. Profile names are globally
// unique, case-insensitive.
//
// IsActive is derived from Settings.ActiveProfileID on read; the settings
// entry is the single source of truth. The field is still serialized so
// stored data and export bundles keep their historical shape.
type SpawnProfile struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Spawns       []Spawn   `json:"spawns"`
	IsActive     bool      `json:"isActive"`
	LastModified time.Time `json:"lastModified"`
}

// FindSpawn returns the spawn with the given id, or nil.
func (p *SpawnProfile) FindSpawn(spawnID string) *Spawn {
	for i := range p.Spawns {
		if p.Spawns[i].ID == spawnID {
			return &p.Spawns[i]
		}
	}
	return nil
}

// Settings holds user-level settings. ActiveProfileID is a weak
// reference to a SpawnProfile; empty means no profile is active.
type Settings struct {
	WorkingDirectory string `json:"workingDirectory"`
	ActiveProfileID  string `json:"activeProfileId,omitempty"`
	Theme            string `json:"theme,omitempty"`
}

// ExportBundle is the canonical backup/restore payload: a complete
// snapshot of all three persisted collections.
type ExportBundle struct {
	Version   string         `json:"version"`
	Timestamp string         `json:"timestamp"` // RFC 3339
	Profiles  []SpawnProfile `json:"profiles"`
	Assets    []MediaAsset   `json:"assets"`
	Settings  Settings       `json:"settings"`
}

// BundleVersion is written into every export bundle produced by this build.
const BundleVersion = "1.0"
