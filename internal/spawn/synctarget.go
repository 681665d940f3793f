package spawn

import "io"

// SyncTarget is the external collaborator that stores pushed export
// bundles. The core never depends on it for correctness: a push happens
// only after a complete local export, and a pull feeds the normal
// import path. All operations stream so large bundles never need to be
// buffered twice.
type SyncTarget interface {
	// PutBundle stores a named bundle. size is the number of bytes that
	// will be read from r. Storing the same name again replaces it.
	PutBundle(name string, r io.Reader, size int64) error

	// GetBundle retrieves a named bundle and writes it to w.
	GetBundle(name string, w io.Writer) error

	// ValidateSetup verifies that the target is accessible and properly
	// configured.
	ValidateSetup() error
}
