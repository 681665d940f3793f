package spawn

import (
	"encoding/json"
	"fmt"
	"time"

	"spawnkit/internal/model"
)

// Backup/restore coordinator. The backing store has no multi-key
// transaction primitive, so a destructive import simulates one with a
// manual double-write: snapshot everything under a dedicated backup key,
// run the destructive steps as a saga of forward actions with matching
// compensations, and on any failure run the compensations in reverse
// order up to the failed step.

type sagaStep struct {
	name       string
	run        func() error
	compensate func() error
}

// Export produces a complete snapshot of all three collections as the
// canonical bundle shape.
func (s *Service) Export() (*model.ExportBundle, error) {
	s.assetsMu.Lock()
	defer s.assetsMu.Unlock()
	s.profilesMu.Lock()
	defer s.profilesMu.Unlock()
	s.settingsMu.Lock()
	defer s.settingsMu.Unlock()
	return s.exportLocked()
}

// exportLocked builds a bundle from current state. Callers must hold all
// three collection mutexes.
func (s *Service) exportLocked() (*model.ExportBundle, error) {
	assets, err := s.assets.GetAll()
	if err != nil {
		return nil, fmt.Errorf("exporting assets: %w", err)
	}
	profiles, err := s.profiles.GetAll()
	if err != nil {
		return nil, fmt.Errorf("exporting profiles: %w", err)
	}
	settings, err := s.settings.Get()
	if err != nil {
		return nil, fmt.Errorf("exporting settings: %w", err)
	}
	for i := range profiles {
		profiles[i].IsActive = settings.ActiveProfileID != "" && profiles[i].ID == settings.ActiveProfileID
	}
	return &model.ExportBundle{
		Version:   model.BundleVersion,
		Timestamp: s.clock.Now().UTC().Format(time.RFC3339),
		Profiles:  profiles,
		Assets:    assets,
		Settings:  settings,
	}, nil
}

// Import destructively replaces all three collections with the bundle's
// contents as one logical unit:
//
//	Validate -> Backup -> Clear -> Write-new -> (DropBackup | Restore)
//
// Validation failures abort before anything is touched. A backup write
// failure aborts before any destructive step. A failure during Clear or
// Write-new triggers restore-from-backup; if the restore itself also
// fails, the store is in a user-visible degraded state, the backup key
// is left in place, and the returned error says so explicitly.
func (s *Service) Import(bundle *model.ExportBundle) error {
	if err := model.ValidateBundle(bundle); err != nil {
		return &ValidationError{Kind: "bundle", Err: err}
	}

	s.assetsMu.Lock()
	defer s.assetsMu.Unlock()
	s.profilesMu.Lock()
	defer s.profilesMu.Unlock()
	s.settingsMu.Lock()
	defer s.settingsMu.Unlock()

	// Backup current state before any destructive step. Never proceed
	// without a safety copy.
	pre, err := s.exportLocked()
	if err != nil {
		return fmt.Errorf("snapshotting current state: %w", err)
	}
	backupData, err := json.Marshal(pre)
	if err != nil {
		return fmt.Errorf("encoding backup: %w", err)
	}
	if err := s.kv.Set(KeyImportBackup, string(backupData)); err != nil {
		return &WriteError{Key: KeyImportBackup, Err: err}
	}

	// Settings.ActiveProfileID must point at a profile in the imported
	// set or be empty; a stale pointer would survive the import as a
	// dangling reference.
	settings := bundle.Settings
	if settings.ActiveProfileID != "" && profileIndex(bundle.Profiles, settings.ActiveProfileID) < 0 {
		s.logger.Warn("imported settings reference missing profile, clearing", "id", settings.ActiveProfileID)
		settings.ActiveProfileID = ""
	}

	steps := []sagaStep{
		{
			name:       "clear assets",
			run:        s.assets.Clear,
			compensate: func() error { return s.assets.SaveAll(pre.Assets) },
		},
		{
			name:       "clear settings",
			run:        s.settings.Clear,
			compensate: func() error { return s.settings.Save(pre.Settings) },
		},
		{
			name:       "clear profiles",
			run:        s.profiles.Clear,
			compensate: func() error { return s.profiles.SaveAll(pre.Profiles) },
		},
		{
			name:       "write assets",
			run:        func() error { return s.assets.SaveAll(bundle.Assets) },
			compensate: func() error { return s.assets.SaveAll(pre.Assets) },
		},
		{
			name:       "write settings",
			run:        func() error { return s.settings.Save(settings) },
			compensate: func() error { return s.settings.Save(pre.Settings) },
		},
		{
			name:       "write profiles",
			run:        func() error { return s.profiles.SaveAll(bundle.Profiles) },
			compensate: func() error { return s.profiles.SaveAll(pre.Profiles) },
		},
	}

	for i := range steps {
		if err := steps[i].run(); err != nil {
			return s.rollback(steps[:i+1], steps[i].name, err)
		}
	}

	// Full success: the safety copy is no longer needed.
	if err := s.kv.Remove(KeyImportBackup); err != nil {
		s.logger.Warn("dropping import backup failed", "error", err)
	}
	s.cache.InvalidatePrefix("spawn:")
	s.logger.Info("import complete",
		"profiles", len(bundle.Profiles),
		"assets", len(bundle.Assets))
	s.notify(ChangedAssets)
	s.notify(ChangedSettings)
	s.notify(ChangedProfiles)
	return nil
}

// rollback runs the compensations for the executed steps in reverse
// order. The backup key is consumed on a clean restore and left in place
// when the restore itself fails.
func (s *Service) rollback(executed []sagaStep, failedStep string, cause error) error {
	s.logger.Error("import step failed, restoring from backup", "step", failedStep, "error", cause)

	for i := len(executed) - 1; i >= 0; i-- {
		if executed[i].compensate == nil {
			continue
		}
		if err := executed[i].compensate(); err != nil {
			s.logger.Error("restore from backup failed", "step", executed[i].name, "error", err)
			return fmt.Errorf("import failed at %q (%v) and restore failed at %q: %w; previous state is preserved under the %q key",
				failedStep, cause, executed[i].name, err, KeyImportBackup)
		}
	}

	if err := s.kv.Remove(KeyImportBackup); err != nil {
		s.logger.Warn("dropping import backup after restore failed", "error", err)
	}
	s.cache.InvalidatePrefix("spawn:")
	return fmt.Errorf("import failed at %q, previous state restored: %w", failedStep, cause)
}

// RestoreFromBackup recovers from an interrupted import by replaying the
// snapshot left under the backup key. Returns a NotFoundError when no
// backup is present.
func (s *Service) RestoreFromBackup() error {
	s.assetsMu.Lock()
	defer s.assetsMu.Unlock()
	s.profilesMu.Lock()
	defer s.profilesMu.Unlock()
	s.settingsMu.Lock()
	defer s.settingsMu.Unlock()

	raw, found, err := s.kv.Get(KeyImportBackup)
	if err != nil {
		return fmt.Errorf("reading import backup: %w", err)
	}
	if !found {
		return &NotFoundError{Kind: "import backup", ID: KeyImportBackup}
	}
	var pre model.ExportBundle
	if err := json.Unmarshal([]byte(raw), &pre); err != nil {
		return fmt.Errorf("decoding import backup: %w", err)
	}
	if err := model.ValidateBundle(&pre); err != nil {
		return fmt.Errorf("import backup is not a valid bundle: %w", err)
	}

	if err := s.assets.SaveAll(pre.Assets); err != nil {
		return fmt.Errorf("restoring assets: %w", err)
	}
	if err := s.settings.Save(pre.Settings); err != nil {
		return fmt.Errorf("restoring settings: %w", err)
	}
	if err := s.profiles.SaveAll(pre.Profiles); err != nil {
		return fmt.Errorf("restoring profiles: %w", err)
	}
	if err := s.kv.Remove(KeyImportBackup); err != nil {
		s.logger.Warn("dropping import backup after restore failed", "error", err)
	}
	s.cache.InvalidatePrefix("spawn:")
	s.logger.Info("restored from import backup")
	return nil
}
