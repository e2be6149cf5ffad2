package testutil

import (
	"certivault/internal/cvault"
	"certivault/internal/encryption"
)

// NewTestEncryptor creates a new test encryptor for testing.
func NewTestEncryptor() cvault.Encryptor {
	return encryption.NewTestEncryptor()
}
