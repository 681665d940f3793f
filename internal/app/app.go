package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"spawnkit/internal/config"
	"spawnkit/internal/encryption"
	"spawnkit/internal/kv"
	"spawnkit/internal/model"
	"spawnkit/internal/notify"
	"spawnkit/internal/spawn"
	"spawnkit/internal/synctarget"
)

// defaultBundleName is the object name used on the sync target when the
// config does not set one.
const defaultBundleName = "spawnkit-bundle.json"

// App is the application layer between the CLI and the spawn service.
// It constructs all dependencies from config, holds the cross-process
// data directory lock, and manages resource lifecycle on Close.
type App struct {
	cfg       *config.Config
	kv        spawn.KVStore
	service   *spawn.Service
	target    spawn.SyncTarget
	encryptor spawn.Encryptor
	lock      *flock.Flock
	logFile   *os.File
}

// NewApp creates a fully wired App from the given config.
// operation identifies the CLI command being run (e.g. "AssetAdd", "Import").
// The caller must call Close when done.
func NewApp(cfg *config.Config, operation string) (*App, error) {
	if err := os.MkdirAll(cfg.BaseDir, 0755); err != nil {
		return nil, fmt.Errorf("creating base directory: %w", err)
	}

	// One process owns the data directory at a time. The file store has
	// no cross-process coordination of its own.
	lock := flock.New(filepath.Join(cfg.BaseDir, "spawnkit.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquiring data directory lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("data directory is locked by another spawnkit process")
	}

	store, err := kv.NewStoreFromConfig(cfg.Store)
	if err != nil {
		lock.Unlock()
		return nil, fmt.Errorf("creating store: %w", err)
	}

	target, err := synctarget.NewTargetFromConfig(cfg.Sync)
	if err != nil {
		store.Close()
		lock.Unlock()
		return nil, fmt.Errorf("creating sync target: %w", err)
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		store.Close()
		lock.Unlock()
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	opID := time.Now().UTC().Format("20060102T150405Z")
	logger, logFile, err := newLogger(cfg.LogDir, opID)
	if err != nil {
		store.Close()
		lock.Unlock()
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger.Info("starting operation", "operation", operation)

	slogL := &slogAdapter{l: logger}
	cache := spawn.NewCache()
	clock := spawn.RealClock{}
	idgen := spawn.UUIDGenerator{}

	assets := spawn.NewAssetRepository(store, cache, slogL, idgen)
	profiles := spawn.NewProfileRepository(store, cache, slogL, clock, idgen)
	settings := spawn.NewSettingsRepository(store, cache, slogL)
	notifier := notify.NewNotifierFromConfig(cfg.Notify)

	svc := spawn.NewService(store, assets, profiles, settings, cache, slogL, notifier, clock)

	return &App{
		cfg:       cfg,
		kv:        store,
		service:   svc,
		target:    target,
		encryptor: enc,
		lock:      lock,
		logFile:   logFile,
	}, nil
}

// Service exposes the underlying spawn service for CLI commands.
func (a *App) Service() *spawn.Service {
	return a.service
}

// SetupKeys generates the encryption key pair protected by the passphrase.
func (a *App) SetupKeys(passphrase string) error {
	if a.encryptor == nil {
		return fmt.Errorf("encryption is disabled in config")
	}
	if a.encryptor.IsConfigured() {
		return fmt.Errorf("encryption keys already exist")
	}
	return a.encryptor.Setup(passphrase)
}

// ExportToFile writes the full store contents as a JSON bundle at path.
// The write is atomic (temp file + rename).
func (a *App) ExportToFile(path string) error {
	bundle, err := a.service.Export()
	if err != nil {
		return fmt.Errorf("exporting bundle: %w", err)
	}

	data, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling bundle: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".spawnkit-export-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing bundle: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing export file: %w", err)
	}
	return nil
}

// ImportFromFile replaces the full store contents with the JSON bundle
// at path.
func (a *App) ImportFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading bundle file: %w", err)
	}

	var bundle model.ExportBundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return fmt.Errorf("parsing bundle file: %w", err)
	}

	return a.service.Import(&bundle)
}

// bundleName returns the sync object name from config, or the default.
func (a *App) bundleName() string {
	if a.cfg.Sync.Name != "" {
		return a.cfg.Sync.Name
	}
	return defaultBundleName
}

// Push exports the store and uploads the bundle to the sync target.
// When encryption is configured the bundle is encrypted with the public
// key; no passphrase is needed to push.
func (a *App) Push() error {
	if a.target == nil {
		return fmt.Errorf("no sync target configured")
	}

	bundle, err := a.service.Export()
	if err != nil {
		return fmt.Errorf("exporting bundle: %w", err)
	}
	data, err := json.Marshal(bundle)
	if err != nil {
		return fmt.Errorf("marshaling bundle: %w", err)
	}

	payload := data
	if a.encryptor != nil && a.encryptor.IsConfigured() {
		var buf bytes.Buffer
		if err := a.encryptor.Encrypt(bytes.NewReader(data), &buf); err != nil {
			return fmt.Errorf("encrypting bundle: %w", err)
		}
		payload = buf.Bytes()
	}

	if err := a.target.PutBundle(a.bundleName(), bytes.NewReader(payload), int64(len(payload))); err != nil {
		return fmt.Errorf("uploading bundle: %w", err)
	}
	return nil
}

// Pull downloads the bundle from the sync target and imports it.
// When encryption is configured the passphrase unlocks the private key
// for this session.
func (a *App) Pull(passphrase string) error {
	if a.target == nil {
		return fmt.Errorf("no sync target configured")
	}

	var buf bytes.Buffer
	if err := a.target.GetBundle(a.bundleName(), &buf); err != nil {
		return fmt.Errorf("downloading bundle: %w", err)
	}

	data := buf.Bytes()
	if a.encryptor != nil && a.encryptor.IsConfigured() {
		dctx, err := a.encryptor.Unlock(passphrase)
		if err != nil {
			return fmt.Errorf("unlocking private key: %w", err)
		}
		var plain bytes.Buffer
		if err := dctx.Decrypt(bytes.NewReader(data), &plain); err != nil {
			return fmt.Errorf("decrypting bundle: %w", err)
		}
		data = plain.Bytes()
	}

	var bundle model.ExportBundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return fmt.Errorf("parsing bundle: %w", err)
	}
	return a.service.Import(&bundle)
}

// ValidateSync verifies that the configured sync target is reachable.
func (a *App) ValidateSync() error {
	if a.target == nil {
		return fmt.Errorf("no sync target configured")
	}
	return a.target.ValidateSetup()
}

// Close closes all resources and releases the data directory lock.
func (a *App) Close() error {
	var firstErr error

	if err := a.kv.Close(); err != nil {
		firstErr = fmt.Errorf("closing store: %w", err)
	}

	if err := a.lock.Unlock(); err != nil {
		if firstErr == nil {
			firstErr = fmt.Errorf("releasing data directory lock: %w", err)
		}
	}

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}
