package drive

import (
	"context"
	"fmt"
	"io"
	"sync"

	"certivault/internal/cvault"
)

// MemoryDrive is an in-memory implementation of the DriveClient interface.
// It models a folder hierarchy and file uploads entirely in memory, making
// it useful for testing. Safe for concurrent use.
type MemoryDrive struct {
	mu      sync.Mutex
	nextID  int
	folders map[string]memoryFolder // id -> folder
	files   map[string]memoryFile   // id -> file
}

type memoryFolder struct {
	Name     string
	ParentID string
}

type memoryFile struct {
	Name     string
	ParentID string
	MIME     string
	Content  []byte
}

// NewMemoryDrive creates a new in-memory drive.
func NewMemoryDrive() *MemoryDrive {
	return &MemoryDrive{
		folders: make(map[string]memoryFolder),
		files:   make(map[string]memoryFile),
	}
}

var _ cvault.DriveClient = (*MemoryDrive)(nil)

// FindOrCreateFolder returns an existing folder with the exact name under
// parentID, or creates one. First match wins when duplicates exist.
func (m *MemoryDrive) FindOrCreateFolder(_ context.Context, name string, parentID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, f := range m.folders {
		if f.Name == name && f.ParentID == parentID {
			return id, nil
		}
	}

	m.nextID++
	id := fmt.Sprintf("folder-%d", m.nextID)
	m.folders[id] = memoryFolder{Name: name, ParentID: parentID}
	return id, nil
}

// UploadFile stores content under parentID and returns a file id.
func (m *MemoryDrive) UploadFile(_ context.Context, parentID string, name string, mimeType string, r io.Reader, size int64) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read content: %w", err)
	}
	if int64(len(data)) != size {
		return "", fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	id := fmt.Sprintf("file-%d", m.nextID)
	m.files[id] = memoryFile{Name: name, ParentID: parentID, MIME: mimeType, Content: data}
	return id, nil
}

// ValidateSetup always succeeds for the in-memory drive.
func (m *MemoryDrive) ValidateSetup(context.Context) error { return nil }

// FolderCount returns the number of folders, for test assertions.
func (m *MemoryDrive) FolderCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.folders)
}

// FileCount returns the number of uploaded files, for test assertions.
func (m *MemoryDrive) FileCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.files)
}

// FolderParent returns the parent id of a folder, for test assertions.
func (m *MemoryDrive) FolderParent(id string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.folders[id]
	return f.ParentID, ok
}

// FileNames returns the names of files uploaded under parentID.
func (m *MemoryDrive) FileNames(parentID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var names []string
	for _, f := range m.files {
		if f.ParentID == parentID {
			names = append(names, f.Name)
		}
	}
	return names
}
