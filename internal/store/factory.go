package store

import (
	"fmt"
	"os"
	"path/filepath"

	"certivault/internal/config"
	"certivault/internal/cvault"
	"certivault/internal/store/migrations"
)

// NewStoreFromConfig creates a Store implementation based on the database
// config type. Pending schema migrations are applied on open.
func NewStoreFromConfig(cfg config.DatabaseConfig) (cvault.Store, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		return openMigrated(filepath.Join(cfg.DataDir, "certivault.db"))
	case "memory":
		return openMigrated(":memory:")
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}

func openMigrated(path string) (*SQLiteStore, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	return NewSQLiteStoreFromDB(db), nil
}
