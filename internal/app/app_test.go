package app

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"spawnkit/internal/config"
	"spawnkit/internal/model"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	base := t.TempDir()
	cfg := config.NewConfig(base)
	cfg.Store = config.StoreConfig{Type: "memory"}
	cfg.Sync = config.SyncConfig{Type: "memory", Name: "test"}
	cfg.Encryption = config.EncryptionConfig{Type: "test"}
	return cfg
}

func TestAppExportImportFile(t *testing.T) {
	cfg := testConfig(t)

	a, err := NewApp(cfg, "Test")
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	defer a.Close()

	if _, err := a.Service().AddAsset("A", "/a.png", false, model.AssetImage, model.PartialProperties{}); err != nil {
		t.Fatalf("AddAsset failed: %v", err)
	}
	if _, err := a.Service().CreateProfile("Main", ""); err != nil {
		t.Fatalf("CreateProfile failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "export.json")
	if err := a.ExportToFile(path); err != nil {
		t.Fatalf("ExportToFile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	var bundle model.ExportBundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if len(bundle.Assets) != 1 || len(bundle.Profiles) != 1 {
		t.Errorf("bundle has %d assets, %d profiles, want 1, 1", len(bundle.Assets), len(bundle.Profiles))
	}

	if err := a.ImportFromFile(path); err != nil {
		t.Fatalf("ImportFromFile failed: %v", err)
	}
	profiles, _ := a.Service().GetProfiles()
	if len(profiles) != 1 {
		t.Errorf("profiles after import = %d, want 1", len(profiles))
	}
}

func TestAppDataDirLock(t *testing.T) {
	cfg := testConfig(t)

	a, err := NewApp(cfg, "First")
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	defer a.Close()

	if _, err := NewApp(cfg, "Second"); err == nil {
		t.Error("second App acquired the data directory lock")
	}
}

func TestAppPushPull(t *testing.T) {
	cfg := testConfig(t)

	a, err := NewApp(cfg, "Test")
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	defer a.Close()

	// The memory sync target is per-App, so push and pull within one
	// session to exercise the full path. The test encryptor is not set up,
	// so the bundle travels in plaintext.
	if _, err := a.Service().CreateProfile("Main", ""); err != nil {
		t.Fatalf("CreateProfile failed: %v", err)
	}
	if err := a.Push(); err != nil {
		t.Fatalf("Push failed: %v", err)
	}

	if err := a.Service().DeleteProfile(mustProfileID(t, a)); err != nil {
		t.Fatalf("DeleteProfile failed: %v", err)
	}

	if err := a.Pull(""); err != nil {
		t.Fatalf("Pull failed: %v", err)
	}
	profiles, _ := a.Service().GetProfiles()
	if len(profiles) != 1 || profiles[0].Name != "Main" {
		t.Errorf("profiles after pull = %+v, want Main restored", profiles)
	}
}

func mustProfileID(t *testing.T, a *App) string {
	t.Helper()
	profiles, err := a.Service().GetProfiles()
	if err != nil || len(profiles) == 0 {
		t.Fatalf("no profiles: %v", err)
	}
	return profiles[0].ID
}
