package testutil

import (
	"testing"

	"certivault/internal/cvault"
	"certivault/internal/store"
	"certivault/internal/store/migrations"
)

// NewTestStore creates an in-memory SQLite store with all migrations applied.
// The store is automatically closed when the test completes.
func NewTestStore(t *testing.T) cvault.Store {
	t.Helper()

	db, err := store.OpenConnection(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		t.Fatalf("failed to apply migrations: %v", err)
	}

	s := store.NewSQLiteStoreFromDB(db)

	t.Cleanup(func() {
		s.Close()
	})

	return s
}
