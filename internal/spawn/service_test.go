package spawn_test

import (
	"sync"
	"testing"

	"spawnkit/internal/model"
	"spawnkit/internal/spawn"
	"spawnkit/internal/testutil"
)

type env struct {
	store    *testutil.FaultStore
	cache    *spawn.Cache
	clock    *testutil.StubClock
	notifier *testutil.RecordingNotifier
	svc      *spawn.Service
}

func newEnv(t *testing.T) *env {
	t.Helper()

	store := testutil.NewFaultStore(testutil.NewTestStore())
	cache := spawn.NewCache()
	logger := spawn.NewNopLogger()
	clock := testutil.FixedClock()
	idgen := testutil.NewStubIDGenerator()
	notifier := testutil.NewRecordingNotifier()

	assets := spawn.NewAssetRepository(store, cache, logger, idgen)
	profiles := spawn.NewProfileRepository(store, cache, logger, clock, idgen)
	settings := spawn.NewSettingsRepository(store, cache, logger)
	svc := spawn.NewService(store, assets, profiles, settings, cache, logger, notifier, clock)

	return &env{store: store, cache: cache, clock: clock, notifier: notifier, svc: svc}
}

func TestFirstProfileAutoActivated(t *testing.T) {
	e := newEnv(t)

	p1, err := e.svc.CreateProfile("Main", "")
	if err != nil {
		t.Fatalf("CreateProfile failed: %v", err)
	}
	if !p1.IsActive {
		t.Error("first profile is not active")
	}

	p2, err := e.svc.CreateProfile("Second", "")
	if err != nil {
		t.Fatalf("CreateProfile failed: %v", err)
	}
	if p2.IsActive {
		t.Error("second profile was auto-activated")
	}

	settings, err := e.svc.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if settings.ActiveProfileID != p1.ID {
		t.Errorf("ActiveProfileID = %q, want %q", settings.ActiveProfileID, p1.ID)
	}
}

func TestSetActiveProfileSwitches(t *testing.T) {
	e := newEnv(t)

	p1, _ := e.svc.CreateProfile("One", "")
	p2, _ := e.svc.CreateProfile("Two", "")

	if err := e.svc.SetActiveProfile(p2.ID); err != nil {
		t.Fatalf("SetActiveProfile failed: %v", err)
	}

	profiles, err := e.svc.GetProfiles()
	if err != nil {
		t.Fatalf("GetProfiles failed: %v", err)
	}
	for _, p := range profiles {
		wantActive := p.ID == p2.ID
		if p.IsActive != wantActive {
			t.Errorf("profile %s IsActive = %v, want %v", p.Name, p.IsActive, wantActive)
		}
	}
	_ = p1

	t.Run("unknown profile is rejected", func(t *testing.T) {
		err := e.svc.SetActiveProfile("no-such-profile")
		if !spawn.IsNotFound(err) {
			t.Errorf("SetActiveProfile(unknown) = %v, want NotFoundError", err)
		}
	})
}

func TestDeleteActiveProfileClearsSetting(t *testing.T) {
	e := newEnv(t)

	p1, _ := e.svc.CreateProfile("One", "")

	if err := e.svc.DeleteProfile(p1.ID); err != nil {
		t.Fatalf("DeleteProfile failed: %v", err)
	}

	settings, err := e.svc.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if settings.ActiveProfileID != "" {
		t.Errorf("ActiveProfileID = %q, want empty after deleting active profile", settings.ActiveProfileID)
	}
}

func TestGetActiveProfileStalePointer(t *testing.T) {
	e := newEnv(t)

	p1, _ := e.svc.CreateProfile("One", "")

	// Simulate a stale setting: point at a profile that no longer exists.
	settings, _ := e.svc.GetSettings()
	settings.ActiveProfileID = "ghost"
	if err := e.svc.SaveSettings(settings); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}

	active, err := e.svc.GetActiveProfile()
	if err != nil {
		t.Fatalf("GetActiveProfile failed: %v", err)
	}
	if active != nil {
		t.Errorf("GetActiveProfile = %v, want nil for stale pointer", active)
	}
	_ = p1
}

func TestDeleteAssetCascades(t *testing.T) {
	e := newEnv(t)

	asset, err := e.svc.AddAsset("Alert", "/media/alert.gif", false, model.AssetImage, model.PartialProperties{})
	if err != nil {
		t.Fatalf("AddAsset failed: %v", err)
	}
	keep, err := e.svc.AddAsset("Keep", "/media/keep.png", false, model.AssetImage, model.PartialProperties{})
	if err != nil {
		t.Fatalf("AddAsset failed: %v", err)
	}

	p1, _ := e.svc.CreateProfile("One", "")
	p2, _ := e.svc.CreateProfile("Two", "")

	s1, err := e.svc.CreateSpawn(p1.ID, "Intro", "", model.ManualTrigger(), 5000)
	if err != nil {
		t.Fatalf("CreateSpawn failed: %v", err)
	}
	s2, err := e.svc.CreateSpawn(p2.ID, "Outro", "", model.ManualTrigger(), 5000)
	if err != nil {
		t.Fatalf("CreateSpawn failed: %v", err)
	}

	// s1 holds the doomed asset between two survivors; s2 holds it once.
	if _, err := e.svc.AttachAsset(p1.ID, s1.ID, keep.ID); err != nil {
		t.Fatalf("AttachAsset failed: %v", err)
	}
	if _, err := e.svc.AttachAsset(p1.ID, s1.ID, asset.ID); err != nil {
		t.Fatalf("AttachAsset failed: %v", err)
	}
	if _, err := e.svc.AttachAsset(p1.ID, s1.ID, keep.ID); err != nil {
		t.Fatalf("AttachAsset failed: %v", err)
	}
	if _, err := e.svc.AttachAsset(p2.ID, s2.ID, asset.ID); err != nil {
		t.Fatalf("AttachAsset failed: %v", err)
	}

	if err := e.svc.DeleteAsset(asset.ID); err != nil {
		t.Fatalf("DeleteAsset failed: %v", err)
	}

	if _, err := e.svc.GetAsset(asset.ID); !spawn.IsNotFound(err) {
		t.Errorf("GetAsset after delete = %v, want NotFoundError", err)
	}

	got1, err := e.svc.GetProfile(p1.ID)
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	sp1 := got1.FindSpawn(s1.ID)
	if len(sp1.Assets) != 2 {
		t.Fatalf("spawn 1 placements = %d, want 2", len(sp1.Assets))
	}
	for i, sa := range sp1.Assets {
		if sa.AssetID != keep.ID {
			t.Errorf("surviving placement %d references %q, want %q", i, sa.AssetID, keep.ID)
		}
		if sa.Order != i {
			t.Errorf("placement %d order = %d, want %d (dense after cascade)", i, sa.Order, i)
		}
	}

	got2, err := e.svc.GetProfile(p2.ID)
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if n := len(got2.FindSpawn(s2.ID).Assets); n != 0 {
		t.Errorf("spawn 2 placements = %d, want 0", n)
	}
}

func TestCascadeLeavesActiveProfileUnchanged(t *testing.T) {
	e := newEnv(t)

	asset, _ := e.svc.AddAsset("A", "/a.png", false, model.AssetImage, model.PartialProperties{})
	p1, _ := e.svc.CreateProfile("Active", "")
	sp, _ := e.svc.CreateSpawn(p1.ID, "S", "", model.ManualTrigger(), 1000)
	if _, err := e.svc.AttachAsset(p1.ID, sp.ID, asset.ID); err != nil {
		t.Fatalf("AttachAsset failed: %v", err)
	}

	if err := e.svc.DeleteAsset(asset.ID); err != nil {
		t.Fatalf("DeleteAsset failed: %v", err)
	}

	active, err := e.svc.GetActiveProfile()
	if err != nil {
		t.Fatalf("GetActiveProfile failed: %v", err)
	}
	if active == nil || active.ID != p1.ID {
		t.Errorf("active profile changed by cascade: got %v, want %s", active, p1.ID)
	}
}

func TestSetSpawnEnabled(t *testing.T) {
	e := newEnv(t)

	p, _ := e.svc.CreateProfile("P", "")
	sp, _ := e.svc.CreateSpawn(p.ID, "S", "", model.ManualTrigger(), 1000)
	if !sp.Enabled {
		t.Fatal("new spawn is not enabled")
	}

	if err := e.svc.SetSpawnEnabled(p.ID, sp.ID, false); err != nil {
		t.Fatalf("SetSpawnEnabled failed: %v", err)
	}

	got, _ := e.svc.GetProfile(p.ID)
	if got.FindSpawn(sp.ID).Enabled {
		t.Error("spawn still enabled after disable")
	}
}

func TestAttachAssetRequiresExistingAsset(t *testing.T) {
	e := newEnv(t)

	p, _ := e.svc.CreateProfile("P", "")
	sp, _ := e.svc.CreateSpawn(p.ID, "S", "", model.ManualTrigger(), 1000)

	_, err := e.svc.AttachAsset(p.ID, sp.ID, "no-such-asset")
	if !spawn.IsNotFound(err) {
		t.Errorf("AttachAsset(missing asset) = %v, want NotFoundError", err)
	}
}

func TestResolvePlacement(t *testing.T) {
	e := newEnv(t)

	asset, _ := e.svc.AddAsset("Clip", "/clip.mp4", false, model.AssetVideo,
		model.PartialProperties{Volume: floatp64(0.9)})
	p, _ := e.svc.CreateProfile("P", "")
	sp, _ := e.svc.CreateSpawn(p.ID, "S", "", model.ManualTrigger(), 5000)
	placement, err := e.svc.AttachAsset(p.ID, sp.ID, asset.ID)
	if err != nil {
		t.Fatalf("AttachAsset failed: %v", err)
	}

	r, err := e.svc.ResolvePlacement(p.ID, sp.ID, placement.ID)
	if err != nil {
		t.Fatalf("ResolvePlacement failed: %v", err)
	}
	if r.Duration != 5000 {
		t.Errorf("Duration = %d, want 5000", r.Duration)
	}
	if r.Properties.Volume != 0.9 {
		t.Errorf("Volume = %v, want 0.9 (asset tier)", r.Properties.Volume)
	}

	t.Run("result is cached", func(t *testing.T) {
		if _, ok := e.cache.Peek(spawn.PlacementKey(sp.ID, asset.ID)); !ok {
			t.Error("resolved placement was not cached")
		}
	})

	t.Run("override updates are visible immediately", func(t *testing.T) {
		d := int64(1234)
		updated := *placement
		updated.Overrides = model.Overrides{
			Duration:   &d,
			Properties: model.PartialProperties{Volume: floatp64(0.1)},
		}
		if err := e.svc.UpdateAttachment(p.ID, sp.ID, updated); err != nil {
			t.Fatalf("UpdateAttachment failed: %v", err)
		}

		r, err := e.svc.ResolvePlacement(p.ID, sp.ID, placement.ID)
		if err != nil {
			t.Fatalf("ResolvePlacement failed: %v", err)
		}
		if r.Duration != 1234 {
			t.Errorf("Duration = %d, want 1234 (stale cache not invalidated?)", r.Duration)
		}
		if r.Properties.Volume != 0.1 {
			t.Errorf("Volume = %v, want 0.1", r.Properties.Volume)
		}
	})
}

// Resolution on a fully cold cache re-reads the placement sub-key and
// both collections from the store in one call.
func TestResolvePlacementColdCache(t *testing.T) {
	e := newEnv(t)

	asset, _ := e.svc.AddAsset("Clip", "/clip.mp4", false, model.AssetVideo,
		model.PartialProperties{Volume: floatp64(0.9)})
	p, _ := e.svc.CreateProfile("P", "")
	sp, _ := e.svc.CreateSpawn(p.ID, "S", "", model.ManualTrigger(), 5000)
	placement, err := e.svc.AttachAsset(p.ID, sp.ID, asset.ID)
	if err != nil {
		t.Fatalf("AttachAsset failed: %v", err)
	}

	e.cache.Invalidate(spawn.KeyAssets)
	e.cache.Invalidate(spawn.KeyProfiles)
	e.cache.InvalidatePrefix("spawn:")

	r, err := e.svc.ResolvePlacement(p.ID, sp.ID, placement.ID)
	if err != nil {
		t.Fatalf("ResolvePlacement on cold cache failed: %v", err)
	}
	if r.Properties.Volume != 0.9 {
		t.Errorf("Volume = %v, want 0.9", r.Properties.Volume)
	}
	if r.Duration != 5000 {
		t.Errorf("Duration = %d, want 5000", r.Duration)
	}
}

func TestResolveReflectsAssetChanges(t *testing.T) {
	e := newEnv(t)

	asset, _ := e.svc.AddAsset("Clip", "/clip.mp4", false, model.AssetVideo,
		model.PartialProperties{Volume: floatp64(0.9)})
	p, _ := e.svc.CreateProfile("P", "")
	sp, _ := e.svc.CreateSpawn(p.ID, "S", "", model.ManualTrigger(), 5000)
	placement, err := e.svc.AttachAsset(p.ID, sp.ID, asset.ID)
	if err != nil {
		t.Fatalf("AttachAsset failed: %v", err)
	}

	r, err := e.svc.ResolvePlacement(p.ID, sp.ID, placement.ID)
	if err != nil {
		t.Fatalf("ResolvePlacement failed: %v", err)
	}
	if r.Properties.Volume != 0.9 {
		t.Fatalf("Volume = %v, want 0.9", r.Properties.Volume)
	}

	t.Run("asset update is visible immediately", func(t *testing.T) {
		updated := *asset
		updated.Properties = model.PartialProperties{Volume: floatp64(0.3)}
		if err := e.svc.UpdateAsset(updated); err != nil {
			t.Fatalf("UpdateAsset failed: %v", err)
		}

		r, err := e.svc.ResolvePlacement(p.ID, sp.ID, placement.ID)
		if err != nil {
			t.Fatalf("ResolvePlacement failed: %v", err)
		}
		if r.Properties.Volume != 0.3 {
			t.Errorf("Volume after asset update = %v, want 0.3", r.Properties.Volume)
		}
	})

	t.Run("asset delete drops the cached placement", func(t *testing.T) {
		if err := e.svc.DeleteAsset(asset.ID); err != nil {
			t.Fatalf("DeleteAsset failed: %v", err)
		}
		if _, ok := e.cache.Peek(spawn.PlacementKey(sp.ID, asset.ID)); ok {
			t.Error("cached placement survived asset delete")
		}
		if _, err := e.svc.ResolvePlacement(p.ID, sp.ID, placement.ID); !spawn.IsNotFound(err) {
			t.Errorf("ResolvePlacement after cascade = %v, want NotFoundError", err)
		}
	})
}

func TestConcurrentFirstProfileCreates(t *testing.T) {
	e := newEnv(t)

	var wg sync.WaitGroup
	profiles := make([]*model.SpawnProfile, 2)
	errs := make([]error, 2)
	for i, name := range []string{"One", "Two"} {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			profiles[i], errs[i] = e.svc.CreateProfile(name, "")
		}(i, name)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("CreateProfile %d failed: %v", i, err)
		}
	}

	settings, err := e.svc.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if settings.ActiveProfileID != profiles[0].ID && settings.ActiveProfileID != profiles[1].ID {
		t.Errorf("ActiveProfileID = %q, want one of the created profiles", settings.ActiveProfileID)
	}

	activated := 0
	for _, p := range profiles {
		if p.IsActive {
			activated++
		}
	}
	if activated != 1 {
		t.Errorf("profiles reporting IsActive = %d, want exactly 1", activated)
	}
}

func floatp64(v float64) *float64 { return &v }
