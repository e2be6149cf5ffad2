package cvault

import (
	"context"

	"certivault/internal/model"
)

// Store provides an interface for local record persistence.
// Every mutation must be durable before the method returns: the sync engine
// relies on MarkSynced being visible to a later invocation even if the
// process dies mid-batch.
type Store interface {
	// Profile operations

	// CreateProfile persists a new profile.
	CreateProfile(ctx context.Context, p *model.Profile) error

	// FindProfileByID returns the profile with the given id, or nil if absent.
	FindProfileByID(ctx context.Context, id string) (*model.Profile, error)

	// FindProfileByName returns the profile with the given name, or nil if absent.
	FindProfileByName(ctx context.Context, name string) (*model.Profile, error)

	// ListProfiles returns all profiles ordered by creation time.
	ListProfiles(ctx context.Context) ([]*model.Profile, error)

	// Certificate operations

	// InsertCertificate persists a new certificate record.
	InsertCertificate(ctx context.Context, c *model.Certificate) error

	// UpdateCertificate replaces the stored fields of an existing record.
	UpdateCertificate(ctx context.Context, c *model.Certificate) error

	// FindCertificateByID returns the record with the given id, or nil if absent.
	FindCertificateByID(ctx context.Context, id string) (*model.Certificate, error)

	// ListCertificates returns all records belonging to a profile,
	// ordered by creation time.
	ListCertificates(ctx context.Context, profileID string) ([]*model.Certificate, error)

	// ListUnsynced returns the profile's records with synced=false,
	// ordered by creation time. This is the sync work-set.
	ListUnsynced(ctx context.Context, profileID string) ([]*model.Certificate, error)

	// MarkSynced sets synced=true and records the remote file id for a
	// single record. This is a keyed update: it never rewrites other rows.
	MarkSynced(ctx context.Context, id string, remoteFileID string) error

	// Category operations

	// AddCustomCategory appends a custom category. Adding an existing
	// category is a no-op.
	AddCustomCategory(ctx context.Context, name string) error

	// ListCustomCategories returns all custom categories in insertion order.
	ListCustomCategories(ctx context.Context) ([]string, error)

	// Settings

	// ActiveProfileID returns the active profile id, or "" if none is set.
	ActiveProfileID(ctx context.Context) (string, error)

	// SetActiveProfileID marks a profile as active.
	SetActiveProfileID(ctx context.Context, id string) error

	// Close closes the underlying connection.
	Close() error
}
