package encryption

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"spawnkit/internal/config"
)

func TestTestEncryptorRoundTrip(t *testing.T) {
	e := NewTestEncryptor()

	if e.IsConfigured() {
		t.Error("fresh encryptor reports configured")
	}
	if err := e.Setup("secret"); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	if !e.IsConfigured() {
		t.Error("encryptor not configured after Setup")
	}

	plaintext := `{"version":"1.0"}`
	var ciphertext bytes.Buffer
	if err := e.Encrypt(strings.NewReader(plaintext), &ciphertext); err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if ciphertext.String() == plaintext {
		t.Error("ciphertext equals plaintext")
	}

	t.Run("wrong passphrase rejected", func(t *testing.T) {
		if _, err := e.Unlock("wrong"); err == nil {
			t.Error("Unlock accepted a wrong passphrase")
		}
	})

	dctx, err := e.Unlock("secret")
	if err != nil {
		t.Fatalf("Unlock failed: %v", err)
	}
	var decrypted bytes.Buffer
	if err := dctx.Decrypt(bytes.NewReader(ciphertext.Bytes()), &decrypted); err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}
	if decrypted.String() != plaintext {
		t.Errorf("Decrypt = %q, want %q", decrypted.String(), plaintext)
	}

	t.Run("unmarked data rejected", func(t *testing.T) {
		var out bytes.Buffer
		if err := dctx.Decrypt(strings.NewReader("plain old data"), &out); err == nil {
			t.Error("Decrypt accepted unmarked data")
		}
	})
}

func TestAgeEncryptorRoundTrip(t *testing.T) {
	dir := t.TempDir()
	e := NewAgeEncryptor(config.EncryptionConfig{
		Type:           "age",
		PublicKeyPath:  filepath.Join(dir, "keys", "test.pub"),
		PrivateKeyPath: filepath.Join(dir, "keys", "test.key"),
	})

	if e.IsConfigured() {
		t.Error("encryptor reports configured before Setup")
	}
	if err := e.Setup("hunter2"); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	if !e.IsConfigured() {
		t.Error("encryptor not configured after Setup")
	}

	plaintext := `{"version":"1.0","profiles":[]}`
	var ciphertext bytes.Buffer
	if err := e.Encrypt(strings.NewReader(plaintext), &ciphertext); err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if bytes.Contains(ciphertext.Bytes(), []byte("profiles")) {
		t.Error("ciphertext leaks plaintext")
	}

	t.Run("wrong passphrase rejected", func(t *testing.T) {
		if _, err := e.Unlock("wrong"); err == nil {
			t.Error("Unlock accepted a wrong passphrase")
		}
	})

	dctx, err := e.Unlock("hunter2")
	if err != nil {
		t.Fatalf("Unlock failed: %v", err)
	}
	var decrypted bytes.Buffer
	if err := dctx.Decrypt(bytes.NewReader(ciphertext.Bytes()), &decrypted); err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}
	if decrypted.String() != plaintext {
		t.Errorf("Decrypt = %q, want %q", decrypted.String(), plaintext)
	}
}

func TestNewEncryptorFromConfig(t *testing.T) {
	t.Run("none yields no encryptor", func(t *testing.T) {
		e, err := NewEncryptorFromConfig(config.EncryptionConfig{Type: "none"})
		if err != nil {
			t.Fatalf("NewEncryptorFromConfig failed: %v", err)
		}
		if e != nil {
			t.Errorf("encryptor = %v, want nil", e)
		}
	})

	t.Run("default is age", func(t *testing.T) {
		e, err := NewEncryptorFromConfig(config.EncryptionConfig{})
		if err != nil {
			t.Fatalf("NewEncryptorFromConfig failed: %v", err)
		}
		if _, ok := e.(*AgeEncryptor); !ok {
			t.Errorf("encryptor = %T, want *AgeEncryptor", e)
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		if _, err := NewEncryptorFromConfig(config.EncryptionConfig{Type: "rot13"}); err == nil {
			t.Error("unknown encryption type accepted")
		}
	})
}
