package app

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"certivault/internal/auth"
	"certivault/internal/config"
	"certivault/internal/cvault"
	"certivault/internal/drive"
	"certivault/internal/encryption"
	"certivault/internal/extract"
	"certivault/internal/imaging"
	"certivault/internal/model"
	"certivault/internal/render"
	"certivault/internal/store"
)

// App is the application layer between the CLI and the vault services.
// It constructs all dependencies from config, exposes high-level operations
// that accept raw CLI inputs, and manages resource lifecycles on Close.
type App struct {
	cfg       *config.Config
	store     cvault.Store
	drive     cvault.DriveClient
	tokens    *auth.FileTokenProvider
	encryptor cvault.Encryptor
	service   *cvault.VaultService
	engine    *cvault.SyncEngine
	logFile   *os.File
}

// NewApp creates a fully wired App from the given config.
// operation identifies the CLI command being run (e.g. "Sync", "AddRecord").
// The caller must call Close when done.
func NewApp(ctx context.Context, cfg *config.Config, operation string) (*App, error) {
	tokens := auth.NewFileTokenProvider(cfg.Drive.TokenPath)

	driveClient, err := drive.NewDriveFromConfig(ctx, cfg.Drive, tokens)
	if err != nil {
		return nil, fmt.Errorf("creating drive client: %w", err)
	}

	st, err := store.NewStoreFromConfig(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("creating store: %w", err)
	}

	extractor, err := extract.NewExtractorFromConfig(ctx, cfg.Extraction, cfg.Categories())
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("creating extractor: %w", err)
	}

	encryptor, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	opID := time.Now().UTC().Format("20060102T150405Z")
	logger, logFile, err := newLogger(cfg.LogDir, opID)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	log := &slogAdapter{l: logger.With("op", operation)}

	renderer := render.NewPDFRenderer()
	service := cvault.NewVaultService(st, extractor, cfg.Categories(), log, cvault.RealClock{}, cvault.UUIDGenerator{})
	engine := cvault.NewSyncEngine(st, driveClient, renderer, cfg.VaultName, time.Month(cfg.StartMonth()), log)

	return &App{
		cfg:       cfg,
		store:     st,
		drive:     driveClient,
		tokens:    tokens,
		encryptor: encryptor,
		service:   service,
		engine:    engine,
		logFile:   logFile,
	}, nil
}

// CreateProfile registers a new profile and makes it active when it is the
// first one.
func (a *App) CreateProfile(ctx context.Context, name string) (*model.Profile, error) {
	existing, err := a.service.ListProfiles(ctx)
	if err != nil {
		return nil, err
	}

	p, err := a.service.CreateProfile(ctx, name)
	if err != nil {
		return nil, err
	}

	if len(existing) == 0 {
		if err := a.store.SetActiveProfileID(ctx, p.ID); err != nil {
			return nil, fmt.Errorf("activating first profile: %w", err)
		}
	}
	return p, nil
}

// ListProfiles returns all profiles plus the active profile id.
func (a *App) ListProfiles(ctx context.Context) ([]*model.Profile, string, error) {
	profiles, err := a.service.ListProfiles(ctx)
	if err != nil {
		return nil, "", err
	}
	activeID, err := a.store.ActiveProfileID(ctx)
	if err != nil {
		return nil, "", err
	}
	return profiles, activeID, nil
}

// UseProfile switches the active profile.
func (a *App) UseProfile(ctx context.Context, name string) (*model.Profile, error) {
	return a.service.UseProfile(ctx, name)
}

// AddCategory appends a custom category.
func (a *App) AddCategory(ctx context.Context, name string) error {
	return a.service.AddCategory(ctx, name)
}

// Categories returns the full category set.
func (a *App) Categories(ctx context.Context) ([]string, error) {
	return a.service.Categories(ctx)
}

// RecordFields carries the manual-entry fields for a record capture.
type RecordFields struct {
	StudentName string
	Title       string
	Issuer      string
	Date        string
	Category    string
	Subject     string
	Summary     string
	Tags        []string
}

// AddRecord captures a certificate from an image file for the active
// profile. Extraction failure is non-fatal: the record is created from the
// manual fields alone.
func (a *App) AddRecord(ctx context.Context, imagePath string, fields RecordFields) (*model.Certificate, error) {
	profile, err := a.service.ActiveProfile(ctx)
	if err != nil {
		return nil, err
	}

	var imageData []byte
	var mimeType string
	if imagePath != "" {
		raw, err := os.ReadFile(imagePath)
		if err != nil {
			return nil, fmt.Errorf("reading image: %w", err)
		}
		imageData, mimeType, err = imaging.Downscale(raw, a.cfg.Extraction.MaxImageEdge)
		if err != nil {
			return nil, fmt.Errorf("preparing image: %w", err)
		}
		if mimeType == "" {
			mimeType = mimeForPath(imagePath)
		}
	}

	return a.service.CreateRecord(ctx, cvault.CreateRecordParams{
		ProfileID:   profile.ID,
		Image:       imageData,
		ImageMIME:   mimeType,
		StudentName: fields.StudentName,
		Title:       fields.Title,
		Issuer:      fields.Issuer,
		Date:        fields.Date,
		Category:    fields.Category,
		Subject:     fields.Subject,
		Summary:     fields.Summary,
		Tags:        fields.Tags,
	})
}

// EditRecord updates a record's fields. Empty fields are left alone; a
// non-nil Tags replaces the full tag set.
func (a *App) EditRecord(ctx context.Context, id string, fields RecordFields) (*model.Certificate, error) {
	return a.service.EditRecord(ctx, id, cvault.EditRecordParams{
		StudentName: fields.StudentName,
		Title:       fields.Title,
		Issuer:      fields.Issuer,
		Date:        fields.Date,
		Category:    fields.Category,
		Subject:     fields.Subject,
		Summary:     fields.Summary,
		Tags:        fields.Tags,
	})
}

// ListRecords returns the active profile's records, filtered and grouped
// for display.
func (a *App) ListRecords(ctx context.Context, query string, tags []string) (map[string]map[string][]*model.Certificate, error) {
	profile, err := a.service.ActiveProfile(ctx)
	if err != nil {
		return nil, err
	}

	records, err := a.service.ListRecords(ctx, profile.ID)
	if err != nil {
		return nil, err
	}

	startMonth := time.Month(a.cfg.StartMonth())
	filtered := cvault.FilterRecords(records, query, tags, startMonth)
	return cvault.GroupByPeriodAndCategory(filtered, startMonth), nil
}

// Sync runs one sync invocation for the active profile.
func (a *App) Sync(ctx context.Context, report cvault.Reporter) (*cvault.SyncResult, error) {
	profile, err := a.service.ActiveProfile(ctx)
	if err != nil {
		return nil, err
	}
	return a.engine.Sync(ctx, profile.ID, report)
}

// SaveToken stores a new drive bearer token.
func (a *App) SaveToken(token string) error {
	return a.tokens.Save(token)
}

// SetupEncryption generates the age key pair for encrypted exports.
func (a *App) SetupEncryption(passphrase string) error {
	return a.encryptor.Setup(passphrase)
}

// Export writes the full vault state to path, age-encrypted when encrypt
// is set.
func (a *App) Export(ctx context.Context, path string, encrypt bool) error {
	state, err := a.service.ExportState(ctx)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	defer f.Close()

	if !encrypt {
		return cvault.WriteState(f, state)
	}

	if !a.encryptor.IsConfigured() {
		return fmt.Errorf("encryption keys not set up: run keys init first")
	}

	var buf bytes.Buffer
	if err := cvault.WriteState(&buf, state); err != nil {
		return err
	}
	return a.encryptor.Encrypt(&buf, f)
}

// Import loads vault state from path. passphrase must be supplied for
// encrypted archives and empty otherwise.
func (a *App) Import(ctx context.Context, path string, passphrase string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening import file: %w", err)
	}
	defer f.Close()

	var state *cvault.State
	if passphrase == "" {
		state, err = cvault.ReadState(f)
		if err != nil {
			return err
		}
	} else {
		dec, err := a.encryptor.Unlock(passphrase)
		if err != nil {
			return err
		}
		var plain strings.Builder
		if err := dec.Decrypt(f, &plain); err != nil {
			return err
		}
		state, err = cvault.ReadState(strings.NewReader(plain.String()))
		if err != nil {
			return err
		}
	}

	return a.service.ImportState(ctx, state)
}

// Close releases all resources.
func (a *App) Close() error {
	var firstErr error

	if err := a.store.Close(); err != nil {
		firstErr = fmt.Errorf("closing store: %w", err)
	}

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}

func mimeForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	default:
		return "image/jpeg"
	}
}
