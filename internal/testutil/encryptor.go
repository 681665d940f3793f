package testutil

import (
	"spawnkit/internal/encryption"
	"spawnkit/internal/spawn"
)

// NewTestEncryptor creates a new test encryptor for testing.
func NewTestEncryptor() spawn.Encryptor {
	return encryption.NewTestEncryptor()
}
