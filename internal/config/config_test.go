package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := &Config{
		BaseDir: "/home/user/.local/share/spawnkit",
		LogDir:  "/home/user/.local/share/spawnkit/log",
		Store: StoreConfig{
			Type:     "file",
			Path:     "/home/user/.local/share/spawnkit/store.json",
			MaxBytes: 10 << 20,
		},
		Sync: SyncConfig{
			Type:   "filesystem",
			Name:   "local",
			FSRoot: "/backup/spawnkit",
		},
		Encryption: EncryptionConfig{
			Type:           "age",
			PublicKeyPath:  "/home/user/.local/share/spawnkit/keys/spawnkit.pub",
			PrivateKeyPath: "/home/user/.local/share/spawnkit/keys/spawnkit.key",
		},
		Notify: NotifyConfig{Endpoint: "http://localhost:9100/changed", TimeoutSeconds: 5},
	}

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.BaseDir != original.BaseDir {
		t.Errorf("BaseDir = %q, want %q", got.BaseDir, original.BaseDir)
	}
	if got.Store.Type != "file" {
		t.Errorf("Store.Type = %q, want %q", got.Store.Type, "file")
	}
	if got.Store.MaxBytes != 10<<20 {
		t.Errorf("Store.MaxBytes = %d, want %d", got.Store.MaxBytes, 10<<20)
	}
	if got.Sync.Type != "filesystem" {
		t.Errorf("Sync.Type = %q, want %q", got.Sync.Type, "filesystem")
	}
	if got.Sync.FSRoot != "/backup/spawnkit" {
		t.Errorf("Sync.FSRoot = %q, want %q", got.Sync.FSRoot, "/backup/spawnkit")
	}
	if got.Encryption.PublicKeyPath != original.Encryption.PublicKeyPath {
		t.Errorf("Encryption.PublicKeyPath = %q, want %q", got.Encryption.PublicKeyPath, original.Encryption.PublicKeyPath)
	}
	if got.Notify.Endpoint != original.Notify.Endpoint {
		t.Errorf("Notify.Endpoint = %q, want %q", got.Notify.Endpoint, original.Notify.Endpoint)
	}
	if got.Notify.TimeoutSeconds != 5 {
		t.Errorf("Notify.TimeoutSeconds = %d, want 5", got.Notify.TimeoutSeconds)
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("/data/spawnkit")

	if cfg.BaseDir != "/data/spawnkit" {
		t.Errorf("BaseDir = %q, want %q", cfg.BaseDir, "/data/spawnkit")
	}
	if cfg.LogDir != "/data/spawnkit/log" {
		t.Errorf("LogDir = %q, want %q", cfg.LogDir, "/data/spawnkit/log")
	}
	if cfg.Store.Type != "file" {
		t.Errorf("Store.Type = %q, want %q", cfg.Store.Type, "file")
	}
	if cfg.Store.Path != "/data/spawnkit/store.json" {
		t.Errorf("Store.Path = %q, want %q", cfg.Store.Path, "/data/spawnkit/store.json")
	}
	if cfg.Sync.Type != "none" {
		t.Errorf("Sync.Type = %q, want %q", cfg.Sync.Type, "none")
	}
	if cfg.Encryption.PublicKeyPath != "/data/spawnkit/keys/spawnkit.pub" {
		t.Errorf("Encryption.PublicKeyPath = %q, want %q", cfg.Encryption.PublicKeyPath, "/data/spawnkit/keys/spawnkit.pub")
	}
	if cfg.Encryption.PrivateKeyPath != "/data/spawnkit/keys/spawnkit.key" {
		t.Errorf("Encryption.PrivateKeyPath = %q, want %q", cfg.Encryption.PrivateKeyPath, "/data/spawnkit/keys/spawnkit.key")
	}
}

func TestInit(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "spawnkit.toml")
		cfg := NewConfig(dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		if _, err := os.Stat(path); err != nil {
			t.Fatalf("config file not created: %v", err)
		}
	})

	t.Run("fails if file already exists", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "spawnkit.toml")
		cfg := NewConfig(dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("first Init() error = %v", err)
		}

		err := Init(path, cfg)
		if err == nil {
			t.Fatal("second Init() expected error")
		}
	})
}

func TestReadFromFile(t *testing.T) {
	t.Run("reads valid config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "spawnkit.toml")
		cfg := NewConfig(dir)
		cfg.Store = StoreConfig{Type: "memory"}

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.Store.Type != "memory" {
			t.Errorf("Store.Type = %q, want %q", got.Store.Type, "memory")
		}
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		_, err := ReadFromFile("/nonexistent/path/spawnkit.toml")
		if err == nil {
			t.Fatal("ReadFromFile() expected error for missing file")
		}
	})
}
