package spawn

import (
	"context"
	"fmt"
	"sync"

	"spawnkit/internal/model"
)

// Service is the orchestration layer over the three repositories. It
// owns everything that spans more than one collection: the delete
// cascade, the active-profile setting, placement resolution, and the
// change notifications that follow successful mutations.
//
// Each collection's load-mutate-save cycle runs under its own mutex so
// whole-collection replacement stays atomic from every reader's point of
// view. Lock order where more than one is held: assets, profiles,
// settings.
type Service struct {
	kv       KVStore
	assets   *AssetRepository
	profiles *ProfileRepository
	settings *SettingsRepository
	cache    *Cache
	logger   Logger
	notifier Notifier
	clock    Clock

	assetsMu   sync.Mutex
	profilesMu sync.Mutex
	settingsMu sync.Mutex
}

// NewService creates a Service with the provided dependencies. kv must
// be the same store the repositories were built over; the coordinator
// uses it directly for the import backup key.
func NewService(kv KVStore, assets *AssetRepository, profiles *ProfileRepository, settings *SettingsRepository, cache *Cache, logger Logger, notifier Notifier, clock Clock) *Service {
	return &Service{
		kv:       kv,
		assets:   assets,
		profiles: profiles,
		settings: settings,
		cache:    cache,
		logger:   logger,
		notifier: notifier,
		clock:    clock,
	}
}

// notify delivers a best-effort change notification. Failure is logged
// and swallowed; it never fails the mutation that triggered it.
func (s *Service) notify(kind ChangeKind) {
	if err := s.notifier.NotifyChanged(context.Background(), kind); err != nil {
		s.logger.Warn("change notification failed", "kind", string(kind), "error", err)
	}
}

// Asset operations

// GetAssets returns all stored assets.
func (s *Service) GetAssets() ([]model.MediaAsset, error) {
	s.assetsMu.Lock()
	defer s.assetsMu.Unlock()
	return s.assets.GetAll()
}

// GetAsset returns one asset by id.
func (s *Service) GetAsset(id string) (*model.MediaAsset, error) {
	s.assetsMu.Lock()
	defer s.assetsMu.Unlock()
	return s.assets.GetByID(id)
}

// AddAsset creates a new asset.
func (s *Service) AddAsset(name, path string, isURL bool, typ model.AssetType, props model.PartialProperties) (*model.MediaAsset, error) {
	s.assetsMu.Lock()
	asset, err := s.assets.Add(name, path, isURL, typ, props)
	s.assetsMu.Unlock()
	if err != nil {
		return nil, err
	}
	s.logger.Info("asset added", "id", asset.ID, "name", asset.Name, "type", string(asset.Type))
	s.notify(ChangedAssets)
	return asset, nil
}

// UpdateAsset replaces a stored asset.
func (s *Service) UpdateAsset(asset model.MediaAsset) error {
	s.assetsMu.Lock()
	err := s.assets.Update(asset)
	s.assetsMu.Unlock()
	if err != nil {
		return err
	}
	s.logger.Info("asset updated", "id", asset.ID)
	s.notify(ChangedAssets)
	return nil
}

// DeleteAsset removes an asset and then cascades removal of every
// placement referencing it across all profiles.
//
// The cascade is best-effort: once the asset delete has committed, a
// cascade failure is logged and reported, but the delete is not rolled
// back. Dangling placements are a recoverable secondary inconsistency,
// not a fatal error for the primary operation.
func (s *Service) DeleteAsset(id string) error {
	s.assetsMu.Lock()
	err := s.assets.Remove(id)
	s.assetsMu.Unlock()
	if err != nil {
		return err
	}
	s.logger.Info("asset deleted", "id", id)
	s.notify(ChangedAssets)

	s.profilesMu.Lock()
	removed, cascadeErr := s.profiles.CascadeAssetRemoval(id)
	s.profilesMu.Unlock()
	if cascadeErr != nil {
		s.logger.Error("cascade after asset delete failed", "id", id, "error", cascadeErr)
		return fmt.Errorf("asset deleted but cascade failed: %w", cascadeErr)
	}
	if removed > 0 {
		s.logger.Info("cascade removed placements", "id", id, "count", removed)
		s.notify(ChangedProfiles)
	}
	return nil
}

// Profile operations

// GetProfiles returns all profiles with IsActive computed from settings.
func (s *Service) GetProfiles() ([]model.SpawnProfile, error) {
	s.profilesMu.Lock()
	profiles, err := s.profiles.GetAll()
	s.profilesMu.Unlock()
	if err != nil {
		return nil, err
	}
	s.settingsMu.Lock()
	settings, err := s.settings.Get()
	s.settingsMu.Unlock()
	if err != nil {
		return nil, err
	}
	for i := range profiles {
		profiles[i].IsActive = settings.ActiveProfileID != "" && profiles[i].ID == settings.ActiveProfileID
	}
	return profiles, nil
}

// GetProfile returns one profile by id, with IsActive computed.
func (s *Service) GetProfile(id string) (*model.SpawnProfile, error) {
	s.profilesMu.Lock()
	p, err := s.profiles.GetByID(id)
	s.profilesMu.Unlock()
	if err != nil {
		return nil, err
	}
	s.settingsMu.Lock()
	settings, err := s.settings.Get()
	s.settingsMu.Unlock()
	if err != nil {
		return nil, err
	}
	p.IsActive = settings.ActiveProfileID == p.ID
	return p, nil
}

// CreateProfile creates a new profile. The first profile created in an
// empty store becomes active automatically. The emptiness check and the
// activation write stay under profilesMu so two concurrent creates
// cannot both observe an empty store and race the activation.
func (s *Service) CreateProfile(name, description string) (*model.SpawnProfile, error) {
	s.profilesMu.Lock()
	existing, err := s.profiles.GetAll()
	if err != nil {
		s.profilesMu.Unlock()
		return nil, err
	}
	profile, err := s.profiles.Create(name, description)
	if err != nil {
		s.profilesMu.Unlock()
		return nil, err
	}
	first := len(existing) == 0
	if first {
		if err := s.setActiveProfileID(profile.ID); err != nil {
			s.profilesMu.Unlock()
			return nil, fmt.Errorf("activating first profile: %w", err)
		}
		profile.IsActive = true
	}
	s.profilesMu.Unlock()

	s.logger.Info("profile created", "id", profile.ID, "name", profile.Name)
	if first {
		s.notify(ChangedSettings)
	}
	s.notify(ChangedProfiles)
	return profile, nil
}

// UpdateProfile replaces a stored profile.
func (s *Service) UpdateProfile(profile model.SpawnProfile) error {
	s.profilesMu.Lock()
	err := s.profiles.Update(profile)
	s.profilesMu.Unlock()
	if err != nil {
		return err
	}
	s.notify(ChangedProfiles)
	return nil
}

// DeleteProfile removes a profile. If it was the active profile, the
// active-profile setting is cleared so no dangling reference survives.
func (s *Service) DeleteProfile(id string) error {
	s.profilesMu.Lock()
	err := s.profiles.Delete(id)
	s.profilesMu.Unlock()
	if err != nil {
		return err
	}
	s.logger.Info("profile deleted", "id", id)
	s.notify(ChangedProfiles)

	s.settingsMu.Lock()
	defer s.settingsMu.Unlock()
	settings, err := s.settings.Get()
	if err != nil {
		return err
	}
	if settings.ActiveProfileID == id {
		settings.ActiveProfileID = ""
		if err := s.settings.Save(settings); err != nil {
			return fmt.Errorf("clearing active profile: %w", err)
		}
		s.notify(ChangedSettings)
	}
	return nil
}

// SetActiveProfile makes the given profile the single active one.
// Settings.ActiveProfileID is the only stored source of truth; the
// IsActive flags readers see are derived from it, so at most one profile
// can ever be active.
func (s *Service) SetActiveProfile(id string) error {
	s.profilesMu.Lock()
	_, err := s.profiles.GetByID(id)
	s.profilesMu.Unlock()
	if err != nil {
		return err
	}
	if err := s.setActiveProfileID(id); err != nil {
		return err
	}
	s.logger.Info("active profile changed", "id", id)
	s.notify(ChangedSettings)
	return nil
}

// ClearActiveProfile deactivates whatever profile is active.
func (s *Service) ClearActiveProfile() error {
	if err := s.setActiveProfileID(""); err != nil {
		return err
	}
	s.notify(ChangedSettings)
	return nil
}

func (s *Service) setActiveProfileID(id string) error {
	s.settingsMu.Lock()
	defer s.settingsMu.Unlock()
	settings, err := s.settings.Get()
	if err != nil {
		return err
	}
	settings.ActiveProfileID = id
	return s.settings.Save(settings)
}

// GetActiveProfile returns the active profile, or nil when none is
// active. A stale setting pointing at a deleted profile is treated as
// "none active".
func (s *Service) GetActiveProfile() (*model.SpawnProfile, error) {
	s.settingsMu.Lock()
	settings, err := s.settings.Get()
	s.settingsMu.Unlock()
	if err != nil {
		return nil, err
	}
	if settings.ActiveProfileID == "" {
		return nil, nil
	}
	s.profilesMu.Lock()
	p, err := s.profiles.GetByID(settings.ActiveProfileID)
	s.profilesMu.Unlock()
	if err != nil {
		if IsNotFound(err) {
			s.logger.Warn("active profile setting references missing profile", "id", settings.ActiveProfileID)
			return nil, nil
		}
		return nil, err
	}
	p.IsActive = true
	return p, nil
}

// Settings operations

// GetSettings returns the stored settings.
func (s *Service) GetSettings() (model.Settings, error) {
	s.settingsMu.Lock()
	defer s.settingsMu.Unlock()
	return s.settings.Get()
}

// SaveSettings stores the settings object whole.
func (s *Service) SaveSettings(settings model.Settings) error {
	s.settingsMu.Lock()
	err := s.settings.Save(settings)
	s.settingsMu.Unlock()
	if err != nil {
		return err
	}
	s.notify(ChangedSettings)
	return nil
}

// Spawn operations (delegated to the profile repository, with
// notifications added)

// CreateSpawn adds a spawn to a profile.
func (s *Service) CreateSpawn(profileID, name, description string, trigger model.Trigger, duration int64) (*model.Spawn, error) {
	s.profilesMu.Lock()
	sp, err := s.profiles.CreateSpawn(profileID, name, description, trigger, duration)
	s.profilesMu.Unlock()
	if err != nil {
		return nil, err
	}
	s.logger.Info("spawn created", "profile", profileID, "id", sp.ID, "name", sp.Name)
	s.notify(ChangedProfiles)
	return sp, nil
}

// UpdateSpawn replaces a spawn in place.
func (s *Service) UpdateSpawn(profileID string, sp model.Spawn) error {
	s.profilesMu.Lock()
	err := s.profiles.UpdateSpawn(profileID, sp)
	s.profilesMu.Unlock()
	if err != nil {
		return err
	}
	s.notify(ChangedProfiles)
	return nil
}

// DeleteSpawn removes a spawn from a profile.
func (s *Service) DeleteSpawn(profileID, spawnID string) error {
	s.profilesMu.Lock()
	err := s.profiles.DeleteSpawn(profileID, spawnID)
	s.profilesMu.Unlock()
	if err != nil {
		return err
	}
	s.notify(ChangedProfiles)
	return nil
}

// SetSpawnEnabled toggles a spawn without touching the rest of it.
func (s *Service) SetSpawnEnabled(profileID, spawnID string, enabled bool) error {
	s.profilesMu.Lock()
	defer s.profilesMu.Unlock()
	p, err := s.profiles.GetByID(profileID)
	if err != nil {
		return err
	}
	sp := p.FindSpawn(spawnID)
	if sp == nil {
		return &NotFoundError{Kind: "spawn", ID: spawnID}
	}
	if sp.Enabled == enabled {
		return nil
	}
	sp.Enabled = enabled
	if err := s.profiles.UpdateSpawn(profileID, *sp); err != nil {
		return err
	}
	s.notify(ChangedProfiles)
	return nil
}

// AttachAsset places an asset inside a spawn. The asset must exist; the
// placement holds a weak reference resolved on read.
func (s *Service) AttachAsset(profileID, spawnID, assetID string) (*model.SpawnAsset, error) {
	s.assetsMu.Lock()
	_, err := s.assets.GetByID(assetID)
	s.assetsMu.Unlock()
	if err != nil {
		return nil, err
	}
	s.profilesMu.Lock()
	placement, err := s.profiles.AttachAsset(profileID, spawnID, assetID)
	s.profilesMu.Unlock()
	if err != nil {
		return nil, err
	}
	s.logger.Info("asset attached", "spawn", spawnID, "asset", assetID, "placement", placement.ID)
	s.notify(ChangedProfiles)
	return placement, nil
}

// UpdateAttachment replaces one placement's enable flag and overrides.
func (s *Service) UpdateAttachment(profileID, spawnID string, placement model.SpawnAsset) error {
	s.profilesMu.Lock()
	err := s.profiles.UpdateAttachment(profileID, spawnID, placement)
	s.profilesMu.Unlock()
	if err != nil {
		return err
	}
	s.notify(ChangedProfiles)
	return nil
}

// DetachAsset removes one placement from a spawn.
func (s *Service) DetachAsset(profileID, spawnID, spawnAssetID string) error {
	s.profilesMu.Lock()
	err := s.profiles.DetachAsset(profileID, spawnID, spawnAssetID)
	s.profilesMu.Unlock()
	if err != nil {
		return err
	}
	s.notify(ChangedProfiles)
	return nil
}

// ResolvedPlacement is the output of ResolvePlacement: the fully
// resolved properties and duration for one spawn-asset combination.
type ResolvedPlacement struct {
	SpawnID    string                    `json:"spawnId"`
	AssetID    string                    `json:"assetId"`
	Duration   int64                     `json:"duration"`
	Properties model.EffectiveProperties `json:"properties"`
}

// ResolvePlacement computes the effective properties for one placement,
// caching the result under the placement's cache-only sub-key. The
// lookup and the cache write happen via Peek and Put rather than the
// read-through Get: computing the result re-enters the cache through
// the repositories, which Get's held-across-fetch lock cannot support.
//
// Both collection locks are held for the whole operation, in lock
// order, so no writer can invalidate the sub-key between the reads and
// the Put. Writers that touch the spawn, the placement, or the asset
// invalidate the sub-key family, so the cached value is never stale.
func (s *Service) ResolvePlacement(profileID, spawnID, spawnAssetID string) (*ResolvedPlacement, error) {
	s.assetsMu.Lock()
	defer s.assetsMu.Unlock()
	s.profilesMu.Lock()
	defer s.profilesMu.Unlock()

	p, err := s.profiles.GetByID(profileID)
	if err != nil {
		return nil, err
	}
	sp := p.FindSpawn(spawnID)
	if sp == nil {
		return nil, &NotFoundError{Kind: "spawn", ID: spawnID}
	}
	placement := sp.FindAsset(spawnAssetID)
	if placement == nil {
		return nil, &NotFoundError{Kind: "spawn asset", ID: spawnAssetID}
	}

	key := PlacementKey(spawnID, placement.AssetID)
	if v, ok := s.cache.Peek(key); ok {
		resolved, ok := v.(*ResolvedPlacement)
		if !ok {
			return nil, fmt.Errorf("cache entry for %q has unexpected type %T", key, v)
		}
		return resolved, nil
	}

	asset, err := s.assets.GetByID(placement.AssetID)
	if err != nil && !IsNotFound(err) {
		return nil, err
	}
	resolved := &ResolvedPlacement{
		SpawnID:    spawnID,
		AssetID:    placement.AssetID,
		Duration:   ResolveDuration(sp, placement.Overrides),
		Properties: ResolveEffectiveProperties(sp, asset, placement.Overrides.Properties),
	}
	s.cache.Put(key, resolved)
	return resolved, nil
}
