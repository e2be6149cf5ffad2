// Package auth supplies bearer credentials for the remote drive.
package auth

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"certivault/internal/cvault"
)

// TokenEnvVar overrides the stored token when set. Handy for scripting and
// for short-lived tokens minted outside the tool.
const TokenEnvVar = "CERTIVAULT_DRIVE_TOKEN"

// FileTokenProvider reads the bearer token saved by `certivault auth login`
// from a file, with an environment variable override. It performs no
// refresh: an expired token surfaces as ErrNotAuthenticated on the next
// remote call and the user re-runs login.
type FileTokenProvider struct {
	path string
}

var _ cvault.TokenProvider = (*FileTokenProvider)(nil)

// NewFileTokenProvider creates a provider reading from the given path.
func NewFileTokenProvider(path string) *FileTokenProvider {
	return &FileTokenProvider{path: path}
}

// Token returns the current bearer token, or cvault.ErrNotAuthenticated
// when none is stored.
func (p *FileTokenProvider) Token(context.Context) (string, error) {
	if tok := strings.TrimSpace(os.Getenv(TokenEnvVar)); tok != "" {
		return tok, nil
	}

	data, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", cvault.ErrNotAuthenticated
		}
		return "", fmt.Errorf("reading token file: %w", err)
	}

	tok := strings.TrimSpace(string(data))
	if tok == "" {
		return "", cvault.ErrNotAuthenticated
	}
	return tok, nil
}

// Save stores a new bearer token with owner-only permissions.
func (p *FileTokenProvider) Save(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("token must not be empty")
	}

	if err := os.MkdirAll(filepath.Dir(p.path), 0700); err != nil {
		return fmt.Errorf("creating token directory: %w", err)
	}
	if err := os.WriteFile(p.path, []byte(token+"\n"), 0600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	return nil
}

// StaticTokenProvider returns a fixed token. Use in tests.
type StaticTokenProvider struct {
	Value string
}

var _ cvault.TokenProvider = (*StaticTokenProvider)(nil)

func (p *StaticTokenProvider) Token(context.Context) (string, error) {
	if p.Value == "" {
		return "", cvault.ErrNotAuthenticated
	}
	return p.Value, nil
}
