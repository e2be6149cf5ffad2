package testutil

import (
	"context"
	"io"
	"sync"

	"certivault/internal/cvault"
	"certivault/internal/drive"
)

// NewTestDrive creates a new in-memory drive for testing.
func NewTestDrive() *drive.MemoryDrive {
	return drive.NewMemoryDrive()
}

// RecordingDrive wraps a DriveClient, counting calls and optionally
// injecting failures keyed by folder or file name.
type RecordingDrive struct {
	Inner cvault.DriveClient

	mu          sync.Mutex
	folderCalls int
	uploadCalls int

	// FailFolder and FailUpload map a name to the error returned when
	// that folder is resolved or that file is uploaded.
	FailFolder map[string]error
	FailUpload map[string]error
}

func NewRecordingDrive(inner cvault.DriveClient) *RecordingDrive {
	return &RecordingDrive{
		Inner:      inner,
		FailFolder: make(map[string]error),
		FailUpload: make(map[string]error),
	}
}

func (d *RecordingDrive) FindOrCreateFolder(ctx context.Context, name string, parentID string) (string, error) {
	d.mu.Lock()
	d.folderCalls++
	err := d.FailFolder[name]
	d.mu.Unlock()

	if err != nil {
		return "", err
	}
	return d.Inner.FindOrCreateFolder(ctx, name, parentID)
}

func (d *RecordingDrive) UploadFile(ctx context.Context, parentID string, name string, mimeType string, r io.Reader, size int64) (string, error) {
	d.mu.Lock()
	d.uploadCalls++
	err := d.FailUpload[name]
	d.mu.Unlock()

	if err != nil {
		return "", err
	}
	return d.Inner.UploadFile(ctx, parentID, name, mimeType, r, size)
}

func (d *RecordingDrive) ValidateSetup(ctx context.Context) error {
	return d.Inner.ValidateSetup(ctx)
}

// FolderCalls returns the number of FindOrCreateFolder calls observed.
func (d *RecordingDrive) FolderCalls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.folderCalls
}

// UploadCalls returns the number of UploadFile calls observed.
func (d *RecordingDrive) UploadCalls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.uploadCalls
}

// ResetCounts zeroes the call counters.
func (d *RecordingDrive) ResetCounts() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.folderCalls = 0
	d.uploadCalls = 0
}
