package encryption

import (
	"bytes"
	"fmt"
	"io"

	"spawnkit/internal/spawn"
)

// testHeader marks data produced by the TestEncryptor.
var testHeader = []byte("SKENC\x00\x00\x00")

// TestEncryptor is a fake encryptor for tests. "Encryption" prepends a
// fixed header; "decryption" strips it. It never touches the filesystem.
type TestEncryptor struct {
	configured bool
	passphrase string
}

var _ spawn.Encryptor = (*TestEncryptor)(nil)

// NewTestEncryptor creates a new TestEncryptor.
func NewTestEncryptor() *TestEncryptor {
	return &TestEncryptor{}
}

// Setup records the passphrase and marks the encryptor configured.
func (e *TestEncryptor) Setup(passphrase string) error {
	e.configured = true
	e.passphrase = passphrase
	return nil
}

// Encrypt writes the test header followed by the plaintext.
func (e *TestEncryptor) Encrypt(r io.Reader, w io.Writer) error {
	if !e.configured {
		return fmt.Errorf("encryptor not configured")
	}
	if _, err := w.Write(testHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return nil
}

// Unlock checks the passphrase against the one given to Setup.
func (e *TestEncryptor) Unlock(passphrase string) (spawn.DecryptionContext, error) {
	if !e.configured {
		return nil, fmt.Errorf("encryptor not configured")
	}
	if passphrase != e.passphrase {
		return nil, fmt.Errorf("incorrect passphrase")
	}
	return &TestDecryptionContext{}, nil
}

// IsConfigured reports whether Setup has been called.
func (e *TestEncryptor) IsConfigured() bool {
	return e.configured
}

// TestDecryptionContext strips the test header from data.
type TestDecryptionContext struct{}

var _ spawn.DecryptionContext = (*TestDecryptionContext)(nil)

// Decrypt verifies and strips the test header, then copies the rest.
func (c *TestDecryptionContext) Decrypt(r io.Reader, w io.Writer) error {
	header := make([]byte, len(testHeader))
	if _, err := io.ReadFull(r, header); err != nil {
		return fmt.Errorf("reading header: %w", err)
	}
	if !bytes.Equal(header, testHeader) {
		return fmt.Errorf("data is not test-encrypted")
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return nil
}
