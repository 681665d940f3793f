package spawn_test

import (
	"errors"
	"testing"
	"time"

	"spawnkit/internal/model"
	"spawnkit/internal/spawn"
)

func TestCreateProfileNameConflict(t *testing.T) {
	e := newEnv(t)

	if _, err := e.svc.CreateProfile("Stream Setup", ""); err != nil {
		t.Fatalf("CreateProfile failed: %v", err)
	}

	_, err := e.svc.CreateProfile("stream setup", "")
	var cerr *spawn.ConflictError
	if !errors.As(err, &cerr) {
		t.Fatalf("CreateProfile(duplicate) = %v, want ConflictError", err)
	}

	profiles, _ := e.svc.GetProfiles()
	if len(profiles) != 1 {
		t.Errorf("profiles = %d, want 1 (conflict must not write)", len(profiles))
	}
}

func TestUpdateProfileRestampsLastModified(t *testing.T) {
	e := newEnv(t)

	p, _ := e.svc.CreateProfile("P", "")
	created := p.LastModified

	e.clock.Advance(time.Hour)

	p.Description = "updated"
	if err := e.svc.UpdateProfile(*p); err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}

	got, _ := e.svc.GetProfile(p.ID)
	if !got.LastModified.After(created) {
		t.Errorf("LastModified = %v, want after %v", got.LastModified, created)
	}
}

func TestSpawnNameUniqueWithinProfileOnly(t *testing.T) {
	e := newEnv(t)

	p1, _ := e.svc.CreateProfile("One", "")
	p2, _ := e.svc.CreateProfile("Two", "")

	if _, err := e.svc.CreateSpawn(p1.ID, "Intro", "", model.ManualTrigger(), 1000); err != nil {
		t.Fatalf("CreateSpawn failed: %v", err)
	}

	t.Run("duplicate in same profile conflicts", func(t *testing.T) {
		_, err := e.svc.CreateSpawn(p1.ID, "INTRO", "", model.ManualTrigger(), 1000)
		var cerr *spawn.ConflictError
		if !errors.As(err, &cerr) {
			t.Errorf("CreateSpawn(duplicate) = %v, want ConflictError", err)
		}
	})

	t.Run("same name in another profile is fine", func(t *testing.T) {
		if _, err := e.svc.CreateSpawn(p2.ID, "Intro", "", model.ManualTrigger(), 1000); err != nil {
			t.Errorf("CreateSpawn in other profile failed: %v", err)
		}
	})
}

func TestDeleteSpawnKeepsOrdersDense(t *testing.T) {
	e := newEnv(t)

	p, _ := e.svc.CreateProfile("P", "")
	a, _ := e.svc.CreateSpawn(p.ID, "A", "", model.ManualTrigger(), 1000)
	b, _ := e.svc.CreateSpawn(p.ID, "B", "", model.ManualTrigger(), 1000)
	c, _ := e.svc.CreateSpawn(p.ID, "C", "", model.ManualTrigger(), 1000)

	if a.Order != 0 || b.Order != 1 || c.Order != 2 {
		t.Fatalf("initial orders = %d,%d,%d, want 0,1,2", a.Order, b.Order, c.Order)
	}

	if err := e.svc.DeleteSpawn(p.ID, b.ID); err != nil {
		t.Fatalf("DeleteSpawn failed: %v", err)
	}

	got, _ := e.svc.GetProfile(p.ID)
	if len(got.Spawns) != 2 {
		t.Fatalf("spawns = %d, want 2", len(got.Spawns))
	}
	for i, sp := range got.Spawns {
		if sp.Order != i {
			t.Errorf("spawn %s order = %d, want %d", sp.Name, sp.Order, i)
		}
	}
}

func TestDetachAssetKeepsOrdersDense(t *testing.T) {
	e := newEnv(t)

	asset, _ := e.svc.AddAsset("A", "/a.png", false, model.AssetImage, model.PartialProperties{})
	p, _ := e.svc.CreateProfile("P", "")
	sp, _ := e.svc.CreateSpawn(p.ID, "S", "", model.ManualTrigger(), 1000)

	first, _ := e.svc.AttachAsset(p.ID, sp.ID, asset.ID)
	second, _ := e.svc.AttachAsset(p.ID, sp.ID, asset.ID)
	third, _ := e.svc.AttachAsset(p.ID, sp.ID, asset.ID)
	_ = first
	_ = third

	if err := e.svc.DetachAsset(p.ID, sp.ID, second.ID); err != nil {
		t.Fatalf("DetachAsset failed: %v", err)
	}

	got, _ := e.svc.GetProfile(p.ID)
	placements := got.FindSpawn(sp.ID).Assets
	if len(placements) != 2 {
		t.Fatalf("placements = %d, want 2", len(placements))
	}
	for i, sa := range placements {
		if sa.Order != i {
			t.Errorf("placement %d order = %d, want %d", i, sa.Order, i)
		}
	}
}

func TestUpdateSpawnPreservesOrder(t *testing.T) {
	e := newEnv(t)

	p, _ := e.svc.CreateProfile("P", "")
	_, _ = e.svc.CreateSpawn(p.ID, "First", "", model.ManualTrigger(), 1000)
	sp, _ := e.svc.CreateSpawn(p.ID, "Second", "", model.ManualTrigger(), 1000)

	changed := *sp
	changed.Order = 99 // must be ignored
	changed.Description = "updated"
	if err := e.svc.UpdateSpawn(p.ID, changed); err != nil {
		t.Fatalf("UpdateSpawn failed: %v", err)
	}

	got, _ := e.svc.GetProfile(p.ID)
	if got.FindSpawn(sp.ID).Order != 1 {
		t.Errorf("spawn order = %d, want preserved 1", got.FindSpawn(sp.ID).Order)
	}
}

func TestCorruptedProfilesBlobSelfHeals(t *testing.T) {
	e := newEnv(t)

	if err := e.store.Set(spawn.KeyProfiles, "{not json"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	profiles, err := e.svc.GetProfiles()
	if err != nil {
		t.Fatalf("GetProfiles on corrupted blob failed: %v", err)
	}
	if len(profiles) != 0 {
		t.Errorf("profiles = %d, want 0 after self-heal", len(profiles))
	}

	if _, found, _ := e.store.Get(spawn.KeyProfiles); found {
		t.Error("corrupted key was not wiped")
	}
}

func TestInvalidRecordDroppedOnLoad(t *testing.T) {
	e := newEnv(t)

	// One valid profile, one with no name.
	blob := `[{"id":"p1","name":"Good","spawns":[],"lastModified":"2024-01-15T10:30:00Z"},` +
		`{"id":"p2","name":"","spawns":[],"lastModified":"2024-01-15T10:30:00Z"}]`
	if err := e.store.Set(spawn.KeyProfiles, blob); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	profiles, err := e.svc.GetProfiles()
	if err != nil {
		t.Fatalf("GetProfiles failed: %v", err)
	}
	if len(profiles) != 1 || profiles[0].ID != "p1" {
		t.Errorf("profiles = %+v, want only p1", profiles)
	}
}
