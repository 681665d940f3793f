package spawn

import (
	"spawnkit/internal/model"
)

// AssetRepository owns the "assets" collection.
type AssetRepository struct {
	kv     KVStore
	cache  *Cache
	logger Logger
	idgen  IDGenerator
}

// NewAssetRepository creates an asset repository over the given store.
func NewAssetRepository(kv KVStore, cache *Cache, logger Logger, idgen IDGenerator) *AssetRepository {
	return &AssetRepository{kv: kv, cache: cache, logger: logger, idgen: idgen}
}

// GetAll returns every valid stored asset. Callers receive independent
// copies; mutating them does not affect the store.
func (r *AssetRepository) GetAll() ([]model.MediaAsset, error) {
	assets, err := loadCollection(r.kv, r.cache, r.logger, KeyAssets, "asset", model.ValidateAsset)
	if err != nil {
		return nil, err
	}
	return model.CloneAssets(assets), nil
}

// GetByID returns the asset with the given id, or a NotFoundError.
func (r *AssetRepository) GetByID(id string) (*model.MediaAsset, error) {
	assets, err := loadCollection(r.kv, r.cache, r.logger, KeyAssets, "asset", model.ValidateAsset)
	if err != nil {
		return nil, err
	}
	for i := range assets {
		if assets[i].ID == id {
			a := assets[i].Clone()
			return &a, nil
		}
	}
	return nil, &NotFoundError{Kind: "asset", ID: id}
}

// Add creates a new asset with a generated id and stores it.
func (r *AssetRepository) Add(name, path string, isURL bool, typ model.AssetType, props model.PartialProperties) (*model.MediaAsset, error) {
	asset := model.MediaAsset{
		ID:         r.idgen.New(),
		Name:       name,
		Path:       path,
		IsURL:      isURL,
		Type:       typ,
		Properties: props.Clone(),
	}
	if err := model.ValidateAsset(&asset); err != nil {
		return nil, &ValidationError{Kind: "asset", Err: err}
	}

	assets, err := loadCollection(r.kv, r.cache, r.logger, KeyAssets, "asset", model.ValidateAsset)
	if err != nil {
		return nil, err
	}
	updated := append(model.CloneAssets(assets), asset)
	if err := saveCollection(r.kv, r.cache, KeyAssets, updated); err != nil {
		return nil, err
	}
	out := asset.Clone()
	return &out, nil
}

// Update replaces the stored asset with the same id. The asset type is
// fixed at creation; an update that changes it is rejected. Resolved
// placements embed asset-tier properties, so every placement sub-key
// referencing the asset is invalidated alongside the collection key.
func (r *AssetRepository) Update(asset model.MediaAsset) error {
	if err := model.ValidateAsset(&asset); err != nil {
		return &ValidationError{Kind: "asset", Err: err}
	}

	assets, err := loadCollection(r.kv, r.cache, r.logger, KeyAssets, "asset", model.ValidateAsset)
	if err != nil {
		return err
	}
	updated := model.CloneAssets(assets)
	for i := range updated {
		if updated[i].ID != asset.ID {
			continue
		}
		if updated[i].Type != asset.Type {
			return &ValidationError{Kind: "asset", Err: errTypeChange(updated[i].Type, asset.Type)}
		}
		updated[i] = asset.Clone()
		err := saveCollection(r.kv, r.cache, KeyAssets, updated)
		r.cache.InvalidateSuffix(AssetSuffix(asset.ID))
		return err
	}
	return &NotFoundError{Kind: "asset", ID: asset.ID}
}

// Remove deletes the asset with the given id from the collection. The
// cross-profile cascade is the Service's responsibility.
func (r *AssetRepository) Remove(id string) error {
	assets, err := loadCollection(r.kv, r.cache, r.logger, KeyAssets, "asset", model.ValidateAsset)
	if err != nil {
		return err
	}
	updated := make([]model.MediaAsset, 0, len(assets))
	for i := range assets {
		if assets[i].ID != id {
			updated = append(updated, assets[i].Clone())
		}
	}
	if len(updated) == len(assets) {
		return &NotFoundError{Kind: "asset", ID: id}
	}
	err = saveCollection(r.kv, r.cache, KeyAssets, updated)
	r.cache.InvalidateSuffix(AssetSuffix(id))
	return err
}

// SaveAll replaces the entire collection. Used by the import
// coordinator; ordinary mutations go through Add/Update/Remove.
func (r *AssetRepository) SaveAll(assets []model.MediaAsset) error {
	return saveCollection(r.kv, r.cache, KeyAssets, assets)
}

// Clear wipes the collection.
func (r *AssetRepository) Clear() error {
	if err := r.kv.Remove(KeyAssets); err != nil {
		return &WriteError{Key: KeyAssets, Err: err}
	}
	r.cache.Invalidate(KeyAssets)
	return nil
}

type typeChangeError struct {
	from, to model.AssetType
}

func (e typeChangeError) Error() string {
	return "asset type is fixed at creation (" + string(e.from) + " -> " + string(e.to) + ")"
}

func errTypeChange(from, to model.AssetType) error {
	return typeChangeError{from: from, to: to}
}
