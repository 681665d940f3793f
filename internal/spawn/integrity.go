package spawn

import (
	"fmt"

	"spawnkit/internal/model"
)

// Referential integrity: after an asset is deleted, no SpawnAsset in any
// profile may still reference it. The cascade deletes dangling
// placements outright rather than nulling them.

// CascadeAssetRemoval scans every profile's spawns and removes
// placements referencing assetID. Profiles are loaded once; the
// collection is written back only if at least one placement was removed,
// avoiding needless writes and cache churn. Returns the number of
// placements removed.
func (r *ProfileRepository) CascadeAssetRemoval(assetID string) (int, error) {
	profiles, err := r.load()
	if err != nil {
		return 0, fmt.Errorf("loading profiles for cascade: %w", err)
	}

	removed := 0
	var touchedSpawns []string
	updated := model.CloneProfiles(profiles)
	now := r.clock.Now()

	for pi := range updated {
		profileChanged := false
		for si := range updated[pi].Spawns {
			sp := &updated[pi].Spawns[si]
			kept := make([]model.SpawnAsset, 0, len(sp.Assets))
			for i := range sp.Assets {
				if sp.Assets[i].AssetID == assetID {
					continue
				}
				sa := sp.Assets[i]
				sa.Order = len(kept)
				kept = append(kept, sa)
			}
			if len(kept) == len(sp.Assets) {
				continue
			}
			removed += len(sp.Assets) - len(kept)
			sp.Assets = kept
			sp.LastModified = now
			touchedSpawns = append(touchedSpawns, sp.ID)
			profileChanged = true
		}
		if profileChanged {
			updated[pi].LastModified = now
		}
	}

	if removed == 0 {
		return 0, nil
	}
	if err := saveCollection(r.kv, r.cache, KeyProfiles, updated); err != nil {
		return 0, fmt.Errorf("writing cascaded profiles: %w", err)
	}
	for _, id := range touchedSpawns {
		r.cache.InvalidatePrefix(SpawnPrefix(id))
	}
	return removed, nil
}
