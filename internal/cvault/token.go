package cvault

import "context"

// TokenProvider supplies the bearer credential for the remote drive.
// Token refresh mechanics live behind this interface; the vault only ever
// asks for a currently-valid token. Implementations return
// ErrNotAuthenticated when no credential is available.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}
