package synctarget

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"spawnkit/internal/spawn"
)

// FileSystemTarget is a filesystem-based implementation of the
// SyncTarget interface. Bundles are stored as files under a root
// directory:
//
//	<root>/
//	  bundles/
//	    <name>
type FileSystemTarget struct {
	name       string
	root       string
	bundlesDir string
}

// NewFileSystemTarget creates a new filesystem target rooted at the
// given path.
func NewFileSystemTarget(name, root string) (*FileSystemTarget, error) {
	bundlesDir := filepath.Join(root, "bundles")
	if err := os.MkdirAll(bundlesDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create bundles directory: %w", err)
	}
	return &FileSystemTarget{name: name, root: root, bundlesDir: bundlesDir}, nil
}

// PutBundle stores a named bundle, replacing any previous one with the
// same name. The write is atomic (temp file + rename).
func (t *FileSystemTarget) PutBundle(name string, r io.Reader, size int64) error {
	destPath := filepath.Join(t.bundlesDir, name)

	tmp, err := os.CreateTemp(t.bundlesDir, ".bundle-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	written, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing bundle: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if written != size {
		os.Remove(tmpPath)
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, written)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing bundle: %w", err)
	}
	return nil
}

// GetBundle retrieves a named bundle and writes it to w.
func (t *FileSystemTarget) GetBundle(name string, w io.Writer) error {
	srcPath := filepath.Join(t.bundlesDir, name)
	f, err := os.Open(srcPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("bundle not found: %s", name)
		}
		return fmt.Errorf("opening bundle: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("reading bundle: %w", err)
	}
	return nil
}

// ValidateSetup verifies that the target directories are accessible.
func (t *FileSystemTarget) ValidateSetup() error {
	for _, dir := range []string{t.root, t.bundlesDir} {
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("target directory not accessible: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("target path is not a directory: %s", dir)
		}
	}
	return nil
}

// Compile-time check that FileSystemTarget implements spawn.SyncTarget
var _ spawn.SyncTarget = (*FileSystemTarget)(nil)
