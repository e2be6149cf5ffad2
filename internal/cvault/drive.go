package cvault

import (
	"context"
	"io"
)

// RootFolderID is the parent id denoting the top of the remote hierarchy.
const RootFolderID = ""

// DriveClient is a thin idempotent API over a remote hierarchical object
// store. The sync engine is its only production consumer.
type DriveClient interface {
	// FindOrCreateFolder returns the id of a non-trashed folder with the
	// exact given name under parentID, creating it if no match exists.
	// When several folders match, an implementation-defined first match is
	// returned. Implementations must escape name characters that are
	// significant to their query language so a name like "O'Brien" cannot
	// widen the search beyond parentID.
	FindOrCreateFolder(ctx context.Context, name string, parentID string) (string, error)

	// UploadFile stores content as a file named name under parentID and
	// returns the remote file id. Single-shot; no resumable semantics.
	UploadFile(ctx context.Context, parentID string, name string, mimeType string, r io.Reader, size int64) (string, error)

	// ValidateSetup verifies that the backend is reachable and that a
	// usable credential is present. Credential absence or expiry is
	// reported as ErrNotAuthenticated.
	ValidateSetup(ctx context.Context) error
}
