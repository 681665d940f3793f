package encryption

import (
	"fmt"

	"spawnkit/internal/config"
	"spawnkit/internal/spawn"
)

// NewEncryptorFromConfig creates an Encryptor implementation based on
// the encryption config type. Type "none" yields no encryptor and no
// error; bundles are pushed in plaintext.
func NewEncryptorFromConfig(cfg config.EncryptionConfig) (spawn.Encryptor, error) {
	switch cfg.Type {
	case "none":
		return nil, nil
	case "", "age":
		return NewAgeEncryptor(cfg), nil
	case "test":
		return NewTestEncryptor(), nil
	default:
		return nil, fmt.Errorf("unknown encryption type: %s", cfg.Type)
	}
}
