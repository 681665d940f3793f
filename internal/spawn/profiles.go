package spawn

import (
	"strings"

	"spawnkit/internal/model"
)

// ProfileRepository owns the "profiles" collection, including the spawns
// embedded in each profile. Spawns have no storage of their own: they
// are created inside a profile and cease to exist when it is deleted.
type ProfileRepository struct {
	kv     KVStore
	cache  *Cache
	logger Logger
	clock  Clock
	idgen  IDGenerator
}

// NewProfileRepository creates a profile repository over the given store.
func NewProfileRepository(kv KVStore, cache *Cache, logger Logger, clock Clock, idgen IDGenerator) *ProfileRepository {
	return &ProfileRepository{kv: kv, cache: cache, logger: logger, clock: clock, idgen: idgen}
}

func (r *ProfileRepository) load() ([]model.SpawnProfile, error) {
	return loadCollection(r.kv, r.cache, r.logger, KeyProfiles, "profile", model.ValidateProfile)
}

// GetAll returns every valid stored profile as independent copies.
func (r *ProfileRepository) GetAll() ([]model.SpawnProfile, error) {
	profiles, err := r.load()
	if err != nil {
		return nil, err
	}
	return model.CloneProfiles(profiles), nil
}

// GetByID returns the profile with the given id, or a NotFoundError.
func (r *ProfileRepository) GetByID(id string) (*model.SpawnProfile, error) {
	profiles, err := r.load()
	if err != nil {
		return nil, err
	}
	for i := range profiles {
		if profiles[i].ID == id {
			p := profiles[i].Clone()
			return &p, nil
		}
	}
	return nil, &NotFoundError{Kind: "profile", ID: id}
}

// Create adds a new empty profile. Profile names are globally unique,
// case-insensitive; a duplicate yields a ConflictError and no write.
func (r *ProfileRepository) Create(name, description string) (*model.SpawnProfile, error) {
	name = strings.TrimSpace(name)
	profiles, err := r.load()
	if err != nil {
		return nil, err
	}
	for i := range profiles {
		if strings.EqualFold(profiles[i].Name, name) {
			return nil, &ConflictError{Kind: "profile", Name: name}
		}
	}

	profile := model.SpawnProfile{
		ID:           r.idgen.New(),
		Name:         name,
		Description:  description,
		Spawns:       []model.Spawn{},
		LastModified: r.clock.Now(),
	}
	if err := model.ValidateProfile(&profile); err != nil {
		return nil, &ValidationError{Kind: "profile", Err: err}
	}

	updated := append(model.CloneProfiles(profiles), profile)
	if err := saveCollection(r.kv, r.cache, KeyProfiles, updated); err != nil {
		return nil, err
	}
	out := profile.Clone()
	return &out, nil
}

// Update replaces the stored profile with the same id, re-checking name
// uniqueness against the other profiles and restamping lastModified.
func (r *ProfileRepository) Update(profile model.SpawnProfile) error {
	if err := model.ValidateProfile(&profile); err != nil {
		return &ValidationError{Kind: "profile", Err: err}
	}
	profiles, err := r.load()
	if err != nil {
		return err
	}

	idx := -1
	for i := range profiles {
		if profiles[i].ID == profile.ID {
			idx = i
			continue
		}
		if strings.EqualFold(profiles[i].Name, profile.Name) {
			return &ConflictError{Kind: "profile", Name: profile.Name}
		}
	}
	if idx < 0 {
		return &NotFoundError{Kind: "profile", ID: profile.ID}
	}

	updated := model.CloneProfiles(profiles)
	profile.LastModified = r.clock.Now()
	updated[idx] = profile.Clone()
	return saveCollection(r.kv, r.cache, KeyProfiles, updated)
}

// Delete removes a profile and everything embedded in it. Placement
// cache sub-keys for its spawns are invalidated alongside.
func (r *ProfileRepository) Delete(id string) error {
	profiles, err := r.load()
	if err != nil {
		return err
	}
	var removed *model.SpawnProfile
	updated := make([]model.SpawnProfile, 0, len(profiles))
	for i := range profiles {
		if profiles[i].ID == id {
			p := profiles[i]
			removed = &p
			continue
		}
		updated = append(updated, profiles[i].Clone())
	}
	if removed == nil {
		return &NotFoundError{Kind: "profile", ID: id}
	}
	if err := saveCollection(r.kv, r.cache, KeyProfiles, updated); err != nil {
		return err
	}
	for i := range removed.Spawns {
		r.cache.InvalidatePrefix(SpawnPrefix(removed.Spawns[i].ID))
	}
	return nil
}

// SaveAll replaces the entire collection. Used by the import coordinator
// and the integrity cascade.
func (r *ProfileRepository) SaveAll(profiles []model.SpawnProfile) error {
	return saveCollection(r.kv, r.cache, KeyProfiles, profiles)
}

// Clear wipes the collection.
func (r *ProfileRepository) Clear() error {
	if err := r.kv.Remove(KeyProfiles); err != nil {
		return &WriteError{Key: KeyProfiles, Err: err}
	}
	r.cache.Invalidate(KeyProfiles)
	return nil
}

// Spawn operations. Every mutation restamps lastModified on both the
// spawn and its owning profile, and keeps spawn order values dense.

// CreateSpawn appends a new spawn to the profile. Spawn names are unique
// within their profile, case-insensitive.
func (r *ProfileRepository) CreateSpawn(profileID, name, description string, trigger model.Trigger, duration int64) (*model.Spawn, error) {
	name = strings.TrimSpace(name)
	profiles, err := r.load()
	if err != nil {
		return nil, err
	}
	idx := profileIndex(profiles, profileID)
	if idx < 0 {
		return nil, &NotFoundError{Kind: "profile", ID: profileID}
	}
	for i := range profiles[idx].Spawns {
		if strings.EqualFold(profiles[idx].Spawns[i].Name, name) {
			return nil, &ConflictError{Kind: "spawn", Name: name}
		}
	}

	now := r.clock.Now()
	sp := model.Spawn{
		ID:           r.idgen.New(),
		Name:         name,
		Description:  description,
		Enabled:      true,
		Trigger:      trigger,
		Duration:     duration,
		Assets:       []model.SpawnAsset{},
		Order:        len(profiles[idx].Spawns),
		LastModified: now,
	}
	if err := model.ValidateSpawn(&sp); err != nil {
		return nil, &ValidationError{Kind: "spawn", Err: err}
	}

	updated := model.CloneProfiles(profiles)
	updated[idx].Spawns = append(updated[idx].Spawns, sp.Clone())
	updated[idx].LastModified = now
	if err := saveCollection(r.kv, r.cache, KeyProfiles, updated); err != nil {
		return nil, err
	}
	out := sp.Clone()
	return &out, nil
}

// UpdateSpawn replaces a spawn in place, preserving its order and
// re-checking name uniqueness against its siblings.
func (r *ProfileRepository) UpdateSpawn(profileID string, sp model.Spawn) error {
	profiles, err := r.load()
	if err != nil {
		return err
	}
	idx := profileIndex(profiles, profileID)
	if idx < 0 {
		return &NotFoundError{Kind: "profile", ID: profileID}
	}

	spawnIdx := -1
	for i := range profiles[idx].Spawns {
		if profiles[idx].Spawns[i].ID == sp.ID {
			spawnIdx = i
			continue
		}
		if strings.EqualFold(profiles[idx].Spawns[i].Name, sp.Name) {
			return &ConflictError{Kind: "spawn", Name: sp.Name}
		}
	}
	if spawnIdx < 0 {
		return &NotFoundError{Kind: "spawn", ID: sp.ID}
	}

	now := r.clock.Now()
	sp.Order = profiles[idx].Spawns[spawnIdx].Order
	sp.LastModified = now
	if err := model.ValidateSpawn(&sp); err != nil {
		return &ValidationError{Kind: "spawn", Err: err}
	}

	updated := model.CloneProfiles(profiles)
	updated[idx].Spawns[spawnIdx] = sp.Clone()
	updated[idx].LastModified = now
	if err := saveCollection(r.kv, r.cache, KeyProfiles, updated); err != nil {
		return err
	}
	r.cache.InvalidatePrefix(SpawnPrefix(sp.ID))
	return nil
}

// DeleteSpawn removes a spawn and re-indexes the survivors so order
// values stay dense and contiguous.
func (r *ProfileRepository) DeleteSpawn(profileID, spawnID string) error {
	profiles, err := r.load()
	if err != nil {
		return err
	}
	idx := profileIndex(profiles, profileID)
	if idx < 0 {
		return &NotFoundError{Kind: "profile", ID: profileID}
	}
	if profiles[idx].FindSpawn(spawnID) == nil {
		return &NotFoundError{Kind: "spawn", ID: spawnID}
	}

	now := r.clock.Now()
	updated := model.CloneProfiles(profiles)
	kept := make([]model.Spawn, 0, len(updated[idx].Spawns)-1)
	for i := range updated[idx].Spawns {
		if updated[idx].Spawns[i].ID == spawnID {
			continue
		}
		sp := updated[idx].Spawns[i]
		sp.Order = len(kept)
		kept = append(kept, sp)
	}
	updated[idx].Spawns = kept
	updated[idx].LastModified = now
	if err := saveCollection(r.kv, r.cache, KeyProfiles, updated); err != nil {
		return err
	}
	r.cache.InvalidatePrefix(SpawnPrefix(spawnID))
	return nil
}

// AttachAsset adds a placement for assetID at the end of the spawn's
// asset list. Asset existence is checked by the Service, which owns the
// cross-repository view.
func (r *ProfileRepository) AttachAsset(profileID, spawnID, assetID string) (*model.SpawnAsset, error) {
	profiles, err := r.load()
	if err != nil {
		return nil, err
	}
	idx := profileIndex(profiles, profileID)
	if idx < 0 {
		return nil, &NotFoundError{Kind: "profile", ID: profileID}
	}
	updated := model.CloneProfiles(profiles)
	sp := updated[idx].FindSpawn(spawnID)
	if sp == nil {
		return nil, &NotFoundError{Kind: "spawn", ID: spawnID}
	}

	now := r.clock.Now()
	placement := model.SpawnAsset{
		ID:      r.idgen.New(),
		AssetID: assetID,
		Order:   len(sp.Assets),
		Enabled: true,
	}
	sp.Assets = append(sp.Assets, placement)
	sp.LastModified = now
	updated[idx].LastModified = now
	if err := saveCollection(r.kv, r.cache, KeyProfiles, updated); err != nil {
		return nil, err
	}
	r.cache.InvalidatePrefix(SpawnPrefix(spawnID))
	out := placement.Clone()
	return &out, nil
}

// UpdateAttachment replaces one placement (enable flag, overrides) while
// preserving its order.
func (r *ProfileRepository) UpdateAttachment(profileID, spawnID string, placement model.SpawnAsset) error {
	if err := model.ValidateSpawnAsset(&placement); err != nil {
		return &ValidationError{Kind: "spawn asset", Err: err}
	}
	profiles, err := r.load()
	if err != nil {
		return err
	}
	idx := profileIndex(profiles, profileID)
	if idx < 0 {
		return &NotFoundError{Kind: "profile", ID: profileID}
	}
	updated := model.CloneProfiles(profiles)
	sp := updated[idx].FindSpawn(spawnID)
	if sp == nil {
		return &NotFoundError{Kind: "spawn", ID: spawnID}
	}
	existing := sp.FindAsset(placement.ID)
	if existing == nil {
		return &NotFoundError{Kind: "spawn asset", ID: placement.ID}
	}

	now := r.clock.Now()
	placement.Order = existing.Order
	placement.AssetID = existing.AssetID
	*existing = placement.Clone()
	sp.LastModified = now
	updated[idx].LastModified = now
	if err := saveCollection(r.kv, r.cache, KeyProfiles, updated); err != nil {
		return err
	}
	r.cache.Invalidate(PlacementKey(spawnID, placement.AssetID))
	return nil
}

// DetachAsset removes one placement and re-indexes the rest.
func (r *ProfileRepository) DetachAsset(profileID, spawnID, spawnAssetID string) error {
	profiles, err := r.load()
	if err != nil {
		return err
	}
	idx := profileIndex(profiles, profileID)
	if idx < 0 {
		return &NotFoundError{Kind: "profile", ID: profileID}
	}
	updated := model.CloneProfiles(profiles)
	sp := updated[idx].FindSpawn(spawnID)
	if sp == nil {
		return &NotFoundError{Kind: "spawn", ID: spawnID}
	}
	if sp.FindAsset(spawnAssetID) == nil {
		return &NotFoundError{Kind: "spawn asset", ID: spawnAssetID}
	}

	now := r.clock.Now()
	kept := make([]model.SpawnAsset, 0, len(sp.Assets)-1)
	for i := range sp.Assets {
		if sp.Assets[i].ID == spawnAssetID {
			continue
		}
		sa := sp.Assets[i]
		sa.Order = len(kept)
		kept = append(kept, sa)
	}
	sp.Assets = kept
	sp.LastModified = now
	updated[idx].LastModified = now
	if err := saveCollection(r.kv, r.cache, KeyProfiles, updated); err != nil {
		return err
	}
	r.cache.InvalidatePrefix(SpawnPrefix(spawnID))
	return nil
}

func profileIndex(profiles []model.SpawnProfile, id string) int {
	for i := range profiles {
		if profiles[i].ID == id {
			return i
		}
	}
	return -1
}
