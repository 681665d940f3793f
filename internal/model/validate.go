package model

import (
	"fmt"
	"time"
)

// Structural validators. Repositories run these against every decoded
// record; invalid records are dropped with a diagnostic rather than
// failing the whole load. The import path runs the same checks but
// treats any failure as fatal.

// ValidateAsset checks the structural invariants of a MediaAsset.
func ValidateAsset(a *MediaAsset) error {
	if a.ID == "" {
		return fmt.Errorf("asset has no id")
	}
	if a.Name == "" {
		return fmt.Errorf("asset %s has no name", a.ID)
	}
	if a.Path == "" {
		return fmt.Errorf("asset %s has no path", a.ID)
	}
	switch a.Type {
	case AssetImage, AssetVideo, AssetAudio:
	default:
		return fmt.Errorf("asset %s has unknown type %q", a.ID, a.Type)
	}
	return nil
}

// ValidateSpawnAsset checks a single placement.
func ValidateSpawnAsset(sa *SpawnAsset) error {
	if sa.ID == "" {
		return fmt.Errorf("spawn asset has no id")
	}
	if sa.AssetID == "" {
		return fmt.Errorf("spawn asset %s has no assetId", sa.ID)
	}
	if sa.Order < 0 {
		return fmt.Errorf("spawn asset %s has negative order %d", sa.ID, sa.Order)
	}
	if sa.Overrides.Duration != nil && *sa.Overrides.Duration < 0 {
		return fmt.Errorf("spawn asset %s has negative duration override", sa.ID)
	}
	return nil
}

// ValidateSpawn checks a spawn and all of its placements. Placement order
// values must be dense and contiguous (0..n-1).
func ValidateSpawn(s *Spawn) error {
	if s.ID == "" {
		return fmt.Errorf("spawn has no id")
	}
	if s.Name == "" {
		return fmt.Errorf("spawn %s has no name", s.ID)
	}
	if s.Duration < 0 {
		return fmt.Errorf("spawn %s has negative duration", s.ID)
	}
	if err := s.Trigger.Validate(); err != nil {
		return fmt.Errorf("spawn %s: %w", s.ID, err)
	}
	seen := make(map[int]bool, len(s.Assets))
	for i := range s.Assets {
		sa := &s.Assets[i]
		if err := ValidateSpawnAsset(sa); err != nil {
			return fmt.Errorf("spawn %s: %w", s.ID, err)
		}
		if sa.Order >= len(s.Assets) || seen[sa.Order] {
			return fmt.Errorf("spawn %s has non-contiguous asset order", s.ID)
		}
		seen[sa.Order] = true
	}
	return nil
}

// ValidateProfile checks a profile and all of its spawns. Spawn order
// values must be dense and contiguous within the profile.
func ValidateProfile(p *SpawnProfile) error {
	if p.ID == "" {
		return fmt.Errorf("profile has no id")
	}
	if p.Name == "" {
		return fmt.Errorf("profile %s has no name", p.ID)
	}
	seen := make(map[int]bool, len(p.Spawns))
	for i := range p.Spawns {
		sp := &p.Spawns[i]
		if err := ValidateSpawn(sp); err != nil {
			return fmt.Errorf("profile %s: %w", p.ID, err)
		}
		if sp.Order >= len(p.Spawns) || sp.Order < 0 || seen[sp.Order] {
			return fmt.Errorf("profile %s has non-contiguous spawn order", p.ID)
		}
		seen[sp.Order] = true
	}
	return nil
}

// ValidateSettings checks the settings object. All fields are optional;
// the check exists so a corrupted blob is caught before it replaces a
// good one.
func ValidateSettings(s *Settings) error {
	return nil
}

// ValidateBundle checks an export bundle before any destructive step.
// Unlike the load path, every record must be valid.
func ValidateBundle(b *ExportBundle) error {
	if b == nil {
		return fmt.Errorf("bundle is nil")
	}
	if b.Version == "" {
		return fmt.Errorf("bundle has no version")
	}
	if b.Timestamp == "" {
		return fmt.Errorf("bundle has no timestamp")
	}
	if _, err := time.Parse(time.RFC3339, b.Timestamp); err != nil {
		return fmt.Errorf("bundle timestamp is not RFC 3339: %w", err)
	}
	ids := make(map[string]bool, len(b.Assets))
	for i := range b.Assets {
		if err := ValidateAsset(&b.Assets[i]); err != nil {
			return fmt.Errorf("bundle asset %d: %w", i, err)
		}
		if ids[b.Assets[i].ID] {
			return fmt.Errorf("bundle has duplicate asset id %s", b.Assets[i].ID)
		}
		ids[b.Assets[i].ID] = true
	}
	for i := range b.Profiles {
		if err := ValidateProfile(&b.Profiles[i]); err != nil {
			return fmt.Errorf("bundle profile %d: %w", i, err)
		}
	}
	if err := ValidateSettings(&b.Settings); err != nil {
		return fmt.Errorf("bundle settings: %w", err)
	}
	return nil
}
