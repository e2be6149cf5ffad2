package cvault

import (
	"errors"
	"fmt"
)

// Batch-fatal sentinel errors. Per-record failures use the typed errors
// below and never unwind past the sync loop.
var (
	// ErrNotAuthenticated means no usable credential is present. Fatal to
	// the whole batch: retrying per-record against a dead credential only
	// wastes quota.
	ErrNotAuthenticated = errors.New("not authenticated with remote drive")

	// ErrNoActiveProfile means no profile is selected.
	ErrNoActiveProfile = errors.New("no active profile selected")

	// ErrSyncInProgress means another sync for the same profile is running.
	ErrSyncInProgress = errors.New("sync already in progress for this profile")
)

// FolderResolutionError is a per-record failure to ensure the record's
// remote folder path exists.
type FolderResolutionError struct {
	RecordID string
	Title    string
	Err      error
}

func (e *FolderResolutionError) Error() string {
	return fmt.Sprintf("resolving remote folder for %q: %v", e.Title, e.Err)
}

func (e *FolderResolutionError) Unwrap() error { return e.Err }

// RenderError is a per-record document rendering failure.
type RenderError struct {
	RecordID string
	Title    string
	Err      error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("rendering document for %q: %v", e.Title, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// UploadError is a per-record upload failure. The record stays unsynced
// and is retried by the next invocation.
type UploadError struct {
	RecordID string
	Title    string
	Err      error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("uploading document for %q: %v", e.Title, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// ExtractionError is a non-fatal metadata extraction failure: record
// creation degrades to manual entry.
type ExtractionError struct {
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extracting certificate metadata: %v", e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }
