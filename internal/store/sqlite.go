package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"certivault/internal/cvault"
	"certivault/internal/model"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

const activeProfileKey = "active_profile_id"

// SQLiteStore implements the cvault.Store interface using SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

var _ cvault.Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLite-backed store.
// path can be a file path or ":memory:" for an in-memory database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	return &SQLiteStore{db: db, path: path}, nil
}

// NewSQLiteStoreFromDB wraps an existing database connection.
// The caller is responsible for ensuring the connection is properly configured.
func NewSQLiteStoreFromDB(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// OpenConnection opens and configures a SQLite connection with appropriate PRAGMAs.
// Exported for tools and tests that need a properly configured connection.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign key constraints (SQLite default is OFF for backward compatibility)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// Profile operations

func (s *SQLiteStore) CreateProfile(ctx context.Context, p *model.Profile) error {
	query := `INSERT INTO profiles (id, name, created_at) VALUES (?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, query, p.ID, p.Name, p.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert profile: %w", err)
	}
	return nil
}

func (s *SQLiteStore) FindProfileByID(ctx context.Context, id string) (*model.Profile, error) {
	query := `SELECT id, name, created_at FROM profiles WHERE id = ?`
	return s.scanProfile(s.db.QueryRowContext(ctx, query, id))
}

func (s *SQLiteStore) FindProfileByName(ctx context.Context, name string) (*model.Profile, error) {
	query := `SELECT id, name, created_at FROM profiles WHERE name = ?`
	return s.scanProfile(s.db.QueryRowContext(ctx, query, name))
}

func (s *SQLiteStore) scanProfile(row *sql.Row) (*model.Profile, error) {
	p := &model.Profile{}
	err := row.Scan(&p.ID, &p.Name, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to scan profile: %w", err)
	}
	return p, nil
}

func (s *SQLiteStore) ListProfiles(ctx context.Context) ([]*model.Profile, error) {
	query := `SELECT id, name, created_at FROM profiles ORDER BY created_at, name`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select profiles: %w", err)
	}
	defer rows.Close()

	var result []*model.Profile
	for rows.Next() {
		p := &model.Profile{}
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Certificate operations

const certificateColumns = `id, profile_id, image, original_image, image_mime,
	student_name, title, issuer, date, category, subject, summary, tags,
	created_at, synced, remote_file_id`

func (s *SQLiteStore) InsertCertificate(ctx context.Context, c *model.Certificate) error {
	tags, err := encodeTags(c.Tags)
	if err != nil {
		return err
	}

	query := `INSERT INTO certificates (` + certificateColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, query,
		c.ID, c.ProfileID, c.Image, c.OriginalImage, c.ImageMIME,
		c.StudentName, c.Title, c.Issuer, c.Date, c.Category, c.Subject, c.Summary, tags,
		c.CreatedAt, c.Synced, c.RemoteFileID)
	if err != nil {
		return fmt.Errorf("failed to insert certificate: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UpdateCertificate(ctx context.Context, c *model.Certificate) error {
	tags, err := encodeTags(c.Tags)
	if err != nil {
		return err
	}

	query := `UPDATE certificates SET
		image = ?, original_image = ?, image_mime = ?,
		student_name = ?, title = ?, issuer = ?, date = ?,
		category = ?, subject = ?, summary = ?, tags = ?,
		synced = ?, remote_file_id = ?
		WHERE id = ?`
	result, err := s.db.ExecContext(ctx, query,
		c.Image, c.OriginalImage, c.ImageMIME,
		c.StudentName, c.Title, c.Issuer, c.Date,
		c.Category, c.Subject, c.Summary, tags,
		c.Synced, c.RemoteFileID,
		c.ID)
	if err != nil {
		return fmt.Errorf("failed to update certificate: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected != 1 {
		return fmt.Errorf("no certificate with id %s", c.ID)
	}
	return nil
}

func (s *SQLiteStore) FindCertificateByID(ctx context.Context, id string) (*model.Certificate, error) {
	query := `SELECT ` + certificateColumns + ` FROM certificates WHERE id = ?`
	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to select certificate: %w", err)
	}
	defer rows.Close()

	certs, err := scanCertificates(rows)
	if err != nil {
		return nil, err
	}
	if len(certs) == 0 {
		return nil, nil // Not found
	}
	return certs[0], nil
}

func (s *SQLiteStore) ListCertificates(ctx context.Context, profileID string) ([]*model.Certificate, error) {
	query := `SELECT ` + certificateColumns + ` FROM certificates
		WHERE profile_id = ? ORDER BY created_at, id`
	rows, err := s.db.QueryContext(ctx, query, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to select certificates: %w", err)
	}
	defer rows.Close()

	return scanCertificates(rows)
}

func (s *SQLiteStore) ListUnsynced(ctx context.Context, profileID string) ([]*model.Certificate, error) {
	query := `SELECT ` + certificateColumns + ` FROM certificates
		WHERE profile_id = ? AND synced = 0 ORDER BY created_at, id`
	rows, err := s.db.QueryContext(ctx, query, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to select unsynced certificates: %w", err)
	}
	defer rows.Close()

	return scanCertificates(rows)
}

func (s *SQLiteStore) MarkSynced(ctx context.Context, id string, remoteFileID string) error {
	query := `UPDATE certificates SET synced = 1, remote_file_id = ? WHERE id = ?`
	result, err := s.db.ExecContext(ctx, query, remoteFileID, id)
	if err != nil {
		return fmt.Errorf("failed to mark certificate synced: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected != 1 {
		return fmt.Errorf("no certificate with id %s", id)
	}
	return nil
}

func scanCertificates(rows *sql.Rows) ([]*model.Certificate, error) {
	var result []*model.Certificate
	for rows.Next() {
		c := &model.Certificate{}
		var tags string
		err := rows.Scan(&c.ID, &c.ProfileID, &c.Image, &c.OriginalImage, &c.ImageMIME,
			&c.StudentName, &c.Title, &c.Issuer, &c.Date, &c.Category, &c.Subject, &c.Summary, &tags,
			&c.CreatedAt, &c.Synced, &c.RemoteFileID)
		if err != nil {
			return nil, fmt.Errorf("failed to scan certificate: %w", err)
		}
		if err := json.Unmarshal([]byte(tags), &c.Tags); err != nil {
			return nil, fmt.Errorf("failed to decode tags: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("failed to encode tags: %w", err)
	}
	return string(data), nil
}

// Category operations

func (s *SQLiteStore) AddCustomCategory(ctx context.Context, name string) error {
	query := `INSERT OR IGNORE INTO custom_categories (name) VALUES (?)`
	if _, err := s.db.ExecContext(ctx, query, name); err != nil {
		return fmt.Errorf("failed to insert category: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListCustomCategories(ctx context.Context) ([]string, error) {
	query := `SELECT name FROM custom_categories ORDER BY rowid`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select categories: %w", err)
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		result = append(result, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Settings

func (s *SQLiteStore) ActiveProfileID(ctx context.Context) (string, error) {
	query := `SELECT value FROM settings WHERE key = ?`
	var value string
	err := s.db.QueryRowContext(ctx, query, activeProfileKey).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read active profile: %w", err)
	}
	return value, nil
}

func (s *SQLiteStore) SetActiveProfileID(ctx context.Context, id string) error {
	query := `INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	if _, err := s.db.ExecContext(ctx, query, activeProfileKey, id); err != nil {
		return fmt.Errorf("failed to set active profile: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
