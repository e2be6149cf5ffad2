package encryption_test

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"certivault/internal/config"
	"certivault/internal/encryption"
)

func newAgeEncryptor(t *testing.T) *encryption.AgeEncryptor {
	t.Helper()
	dir := t.TempDir()
	return encryption.NewAgeEncryptor(config.EncryptionConfig{
		PublicKeyPath:  filepath.Join(dir, "keys", "certivault.pub"),
		PrivateKeyPath: filepath.Join(dir, "keys", "certivault.key"),
	})
}

func TestAgeEncryptor(t *testing.T) {
	t.Run("is unconfigured before setup", func(t *testing.T) {
		e := newAgeEncryptor(t)

		if e.IsConfigured() {
			t.Error("IsConfigured() = true before Setup()")
		}
		if err := e.Encrypt(strings.NewReader("data"), &bytes.Buffer{}); err == nil {
			t.Error("Encrypt() without keys succeeded, want error")
		}
	})

	t.Run("encrypt and unlock round-trip", func(t *testing.T) {
		e := newAgeEncryptor(t)

		if err := e.Setup("correct horse battery"); err != nil {
			t.Fatalf("Setup() error = %v", err)
		}
		if !e.IsConfigured() {
			t.Fatal("IsConfigured() = false after Setup()")
		}

		plaintext := `{"profiles": [], "certificates": []}`
		var ciphertext bytes.Buffer
		if err := e.Encrypt(strings.NewReader(plaintext), &ciphertext); err != nil {
			t.Fatalf("Encrypt() error = %v", err)
		}
		if strings.Contains(ciphertext.String(), "profiles") {
			t.Error("ciphertext leaks plaintext")
		}

		dc, err := e.Unlock("correct horse battery")
		if err != nil {
			t.Fatalf("Unlock() error = %v", err)
		}

		var decrypted bytes.Buffer
		if err := dc.Decrypt(bytes.NewReader(ciphertext.Bytes()), &decrypted); err != nil {
			t.Fatalf("Decrypt() error = %v", err)
		}
		if decrypted.String() != plaintext {
			t.Errorf("Decrypt() = %q, want %q", decrypted.String(), plaintext)
		}
	})

	t.Run("wrong passphrase cannot unlock", func(t *testing.T) {
		e := newAgeEncryptor(t)

		if err := e.Setup("right"); err != nil {
			t.Fatalf("Setup() error = %v", err)
		}
		if _, err := e.Unlock("wrong"); err == nil {
			t.Error("Unlock() with wrong passphrase succeeded, want error")
		}
	})
}

func TestTestEncryptor(t *testing.T) {
	e := encryption.NewTestEncryptor()

	t.Run("round-trips through the test header", func(t *testing.T) {
		var ciphertext bytes.Buffer
		if err := e.Encrypt(strings.NewReader("payload"), &ciphertext); err != nil {
			t.Fatalf("Encrypt() error = %v", err)
		}
		if ciphertext.String() == "payload" {
			t.Error("Encrypt() output identical to plaintext")
		}

		dc, err := e.Unlock("anything")
		if err != nil {
			t.Fatalf("Unlock() error = %v", err)
		}
		var out bytes.Buffer
		if err := dc.Decrypt(bytes.NewReader(ciphertext.Bytes()), &out); err != nil {
			t.Fatalf("Decrypt() error = %v", err)
		}
		if out.String() != "payload" {
			t.Errorf("Decrypt() = %q", out.String())
		}
	})

	t.Run("rejects data without the header", func(t *testing.T) {
		dc, err := e.Unlock("anything")
		if err != nil {
			t.Fatalf("Unlock() error = %v", err)
		}
		if err := dc.Decrypt(strings.NewReader("plain bytes only"), &bytes.Buffer{}); err == nil {
			t.Error("Decrypt() of unmarked data succeeded, want error")
		}
	})
}
