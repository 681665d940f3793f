package spawn_test

import (
	"errors"
	"testing"

	"spawnkit/internal/model"
	"spawnkit/internal/spawn"
)

func TestAddAndGetAsset(t *testing.T) {
	e := newEnv(t)

	added, err := e.svc.AddAsset("Alert", "/media/alert.gif", false, model.AssetImage, model.PartialProperties{})
	if err != nil {
		t.Fatalf("AddAsset failed: %v", err)
	}
	if added.ID == "" {
		t.Fatal("AddAsset returned empty id")
	}

	got, err := e.svc.GetAsset(added.ID)
	if err != nil {
		t.Fatalf("GetAsset failed: %v", err)
	}
	if got.Name != "Alert" || got.Path != "/media/alert.gif" || got.Type != model.AssetImage {
		t.Errorf("GetAsset = %+v, want Alert/%s/image", got, "/media/alert.gif")
	}
}

func TestAddAssetValidation(t *testing.T) {
	e := newEnv(t)

	tests := []struct {
		name      string
		assetName string
		path      string
		typ       model.AssetType
	}{
		{"empty name", "", "/a.png", model.AssetImage},
		{"empty path", "A", "", model.AssetImage},
		{"unknown type", "A", "/a.png", model.AssetType("hologram")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.svc.AddAsset(tt.assetName, tt.path, false, tt.typ, model.PartialProperties{})
			var verr *spawn.ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("AddAsset = %v, want ValidationError", err)
			}
		})
	}
}

func TestUpdateAssetRejectsTypeChange(t *testing.T) {
	e := newEnv(t)

	added, _ := e.svc.AddAsset("Clip", "/clip.mp4", false, model.AssetVideo, model.PartialProperties{})

	changed := *added
	changed.Type = model.AssetAudio
	err := e.svc.UpdateAsset(changed)
	var verr *spawn.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("UpdateAsset(type change) = %v, want ValidationError", err)
	}

	got, _ := e.svc.GetAsset(added.ID)
	if got.Type != model.AssetVideo {
		t.Errorf("asset type = %q, want unchanged %q", got.Type, model.AssetVideo)
	}
}

func TestUpdateAsset(t *testing.T) {
	e := newEnv(t)

	added, _ := e.svc.AddAsset("Old", "/old.png", false, model.AssetImage, model.PartialProperties{})

	changed := *added
	changed.Name = "New"
	changed.Path = "https://example.com/new.png"
	changed.IsURL = true
	if err := e.svc.UpdateAsset(changed); err != nil {
		t.Fatalf("UpdateAsset failed: %v", err)
	}

	got, _ := e.svc.GetAsset(added.ID)
	if got.Name != "New" || !got.IsURL {
		t.Errorf("updated asset = %+v, want name New, isUrl true", got)
	}
}

func TestDeleteAssetNotFound(t *testing.T) {
	e := newEnv(t)

	err := e.svc.DeleteAsset("missing")
	if !spawn.IsNotFound(err) {
		t.Errorf("DeleteAsset(missing) = %v, want NotFoundError", err)
	}
}

func TestGetAssetsReturnsCopies(t *testing.T) {
	e := newEnv(t)

	added, _ := e.svc.AddAsset("A", "/a.png", false, model.AssetImage, model.PartialProperties{})

	list, _ := e.svc.GetAssets()
	list[0].Name = "mutated"

	got, _ := e.svc.GetAsset(added.ID)
	if got.Name != "A" {
		t.Errorf("stored asset name = %q, caller mutation leaked through", got.Name)
	}
}
