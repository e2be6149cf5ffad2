package cvault

import "io"

// Encryptor protects exported state archives.
type Encryptor interface {
	// Setup generates and stores a new key pair protected by the passphrase.
	Setup(passphrase string) error

	// Encrypt reads plaintext from r and writes ciphertext to w.
	Encrypt(r io.Reader, w io.Writer) error

	// Unlock decrypts the private key with the passphrase and returns a
	// context for decrypting archives.
	Unlock(passphrase string) (DecryptionContext, error)

	// IsConfigured reports whether key material exists.
	IsConfigured() bool
}

// DecryptionContext holds an unlocked identity for decrypting archives.
type DecryptionContext interface {
	Decrypt(r io.Reader, w io.Writer) error
}
