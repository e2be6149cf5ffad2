package cvault

import (
	"context"
	"fmt"
	"strings"

	"certivault/internal/model"
)

// VaultService is the orchestration layer that coordinates record capture,
// profiles and categories for the CLI. Remote syncing lives in SyncEngine.
type VaultService struct {
	store          Store
	extractor      Extractor
	baseCategories []string
	logger         Logger
	clock          Clock
	idgen          IDGenerator
}

// NewVaultService creates a new VaultService with the provided dependencies.
// extractor may be nil when metadata extraction is disabled.
func NewVaultService(store Store, extractor Extractor, baseCategories []string, logger Logger, clock Clock, idgen IDGenerator) *VaultService {
	return &VaultService{
		store:          store,
		extractor:      extractor,
		baseCategories: baseCategories,
		logger:         logger,
		clock:          clock,
		idgen:          idgen,
	}
}

// CreateProfile registers a new named profile. Profile names must be unique
// since they become remote folder names.
func (s *VaultService) CreateProfile(ctx context.Context, name string) (*model.Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("profile name must not be empty")
	}

	existing, err := s.store.FindProfileByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("checking for existing profile: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("profile already exists: %s", name)
	}

	p := &model.Profile{
		ID:        s.idgen.New(),
		Name:      name,
		CreatedAt: s.clock.Now(),
	}
	if err := s.store.CreateProfile(ctx, p); err != nil {
		return nil, fmt.Errorf("creating profile: %w", err)
	}

	s.logger.Info("profile created", "name", name)
	return p, nil
}

// ListProfiles returns all profiles.
func (s *VaultService) ListProfiles(ctx context.Context) ([]*model.Profile, error) {
	return s.store.ListProfiles(ctx)
}

// UseProfile marks the named profile as active.
func (s *VaultService) UseProfile(ctx context.Context, name string) (*model.Profile, error) {
	p, err := s.store.FindProfileByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("finding profile: %w", err)
	}
	if p == nil {
		return nil, fmt.Errorf("no such profile: %s", name)
	}
	if err := s.store.SetActiveProfileID(ctx, p.ID); err != nil {
		return nil, fmt.Errorf("setting active profile: %w", err)
	}
	return p, nil
}

// ActiveProfile returns the active profile, or ErrNoActiveProfile.
func (s *VaultService) ActiveProfile(ctx context.Context) (*model.Profile, error) {
	id, err := s.store.ActiveProfileID(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading active profile: %w", err)
	}
	if id == "" {
		return nil, ErrNoActiveProfile
	}
	p, err := s.store.FindProfileByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading active profile: %w", err)
	}
	if p == nil {
		return nil, ErrNoActiveProfile
	}
	return p, nil
}

// Categories returns the full category set: the fixed base list followed by
// custom categories in insertion order.
func (s *VaultService) Categories(ctx context.Context) ([]string, error) {
	custom, err := s.store.ListCustomCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing custom categories: %w", err)
	}
	out := append([]string(nil), s.baseCategories...)
	for _, c := range custom {
		if !containsString(out, c) {
			out = append(out, c)
		}
	}
	return out, nil
}

// AddCategory appends a custom category. Categories are append-only:
// there is no rename or delete, so existing records can never be orphaned
// by category churn.
func (s *VaultService) AddCategory(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("category name must not be empty")
	}
	if containsString(s.baseCategories, name) {
		return fmt.Errorf("category already exists: %s", name)
	}
	if err := s.store.AddCustomCategory(ctx, name); err != nil {
		return fmt.Errorf("adding category: %w", err)
	}
	s.logger.Info("category added", "name", name)
	return nil
}

// CreateRecordParams carries the inputs for one record capture. Manual
// fields override whatever the extraction service returns.
type CreateRecordParams struct {
	ProfileID   string
	Image       []byte
	ImageMIME   string
	StudentName string
	Title       string
	Issuer      string
	Date        string
	Category    string
	Subject     string
	Summary     string
	Tags        []string
}

// CreateRecord captures one certificate. When an extractor is configured it
// is consulted first; extraction failure degrades to a manual-entry record
// rather than blocking creation. The record's category must be a member of
// the current category set at assignment time; later category-set changes
// never retroactively invalidate stored records.
func (s *VaultService) CreateRecord(ctx context.Context, params CreateRecordParams) (*model.Certificate, error) {
	if params.ProfileID == "" {
		return nil, ErrNoActiveProfile
	}
	profile, err := s.store.FindProfileByID(ctx, params.ProfileID)
	if err != nil {
		return nil, fmt.Errorf("loading profile: %w", err)
	}
	if profile == nil {
		return nil, fmt.Errorf("no such profile: %s", params.ProfileID)
	}

	cert := &model.Certificate{
		ID:            s.idgen.New(),
		ProfileID:     profile.ID,
		Image:         params.Image,
		OriginalImage: params.Image,
		ImageMIME:     params.ImageMIME,
		CreatedAt:     s.clock.Now(),
	}

	if s.extractor != nil && len(params.Image) > 0 {
		ext, err := s.extractor.Extract(ctx, params.Image, params.ImageMIME)
		if err != nil {
			s.logger.Warn("extraction failed, falling back to manual entry", "err", err)
		} else {
			applyExtraction(cert, ext)
		}
	}

	// Manual values win over extracted ones.
	overlayParams(cert, params)

	if cert.Title == "" {
		cert.Title = "Untitled Certificate"
	}
	cert.Tags = dedupeTags(cert.Tags)

	if cert.Category != "" {
		categories, err := s.Categories(ctx)
		if err != nil {
			return nil, err
		}
		if !containsString(categories, cert.Category) {
			if params.Category != "" {
				return nil, fmt.Errorf("unknown category %q: add it first with category add", cert.Category)
			}
			// The category came from extraction. Extraction output never
			// blocks capture, so drop it and leave the record uncategorized.
			s.logger.Warn("extracted category not in category set, dropping", "category", cert.Category)
			cert.Category = ""
		}
	}

	if err := s.store.InsertCertificate(ctx, cert); err != nil {
		return nil, fmt.Errorf("inserting record: %w", err)
	}

	s.logger.Info("record created", "record", cert.ID, "title", cert.Title, "profile", profile.Name)
	return cert, nil
}

// EditRecordParams carries replacement values for an edit; empty fields are
// left untouched. A non-nil Tags replaces the full tag set.
type EditRecordParams struct {
	StudentName string
	Title       string
	Issuer      string
	Date        string
	Category    string
	Subject     string
	Summary     string
	Tags        []string
}

// EditRecord applies field edits to an existing record. Changing the title,
// date or category moves the record's remote path, so such edits clear the
// synced flag and the next sync pass re-uploads to the new location. The
// stale copy at the old path is not removed.
func (s *VaultService) EditRecord(ctx context.Context, id string, params EditRecordParams) (*model.Certificate, error) {
	cert, err := s.store.FindCertificateByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading record: %w", err)
	}
	if cert == nil {
		return nil, fmt.Errorf("no such record: %s", id)
	}

	if params.Category != "" {
		categories, err := s.Categories(ctx)
		if err != nil {
			return nil, err
		}
		if !containsString(categories, params.Category) {
			return nil, fmt.Errorf("unknown category %q: add it first with category add", params.Category)
		}
	}

	pathBefore := [3]string{cert.Title, cert.Date, cert.Category}

	if params.StudentName != "" {
		cert.StudentName = params.StudentName
	}
	if params.Title != "" {
		cert.Title = params.Title
	}
	if params.Issuer != "" {
		cert.Issuer = params.Issuer
	}
	if params.Date != "" {
		cert.Date = params.Date
	}
	if params.Category != "" {
		cert.Category = params.Category
	}
	if params.Subject != "" {
		cert.Subject = params.Subject
	}
	if params.Summary != "" {
		cert.Summary = params.Summary
	}
	if params.Tags != nil {
		cert.Tags = dedupeTags(params.Tags)
	}

	if cert.Synced && [3]string{cert.Title, cert.Date, cert.Category} != pathBefore {
		cert.Synced = false
		cert.RemoteFileID = ""
	}

	if err := s.store.UpdateCertificate(ctx, cert); err != nil {
		return nil, fmt.Errorf("updating record: %w", err)
	}

	s.logger.Info("record updated", "record", cert.ID, "title", cert.Title)
	return cert, nil
}

// ListRecords returns all of a profile's records.
func (s *VaultService) ListRecords(ctx context.Context, profileID string) ([]*model.Certificate, error) {
	return s.store.ListCertificates(ctx, profileID)
}

func applyExtraction(cert *model.Certificate, ext *Extraction) {
	if ext == nil {
		return
	}
	if len(ext.CleanedImage) > 0 {
		cert.Image = ext.CleanedImage
	}
	cert.Title = ext.Title
	cert.StudentName = ext.StudentName
	cert.Issuer = ext.Issuer
	cert.Date = ext.Date
	cert.Category = ext.Category
	cert.Subject = ext.Subject
	cert.Summary = ext.Summary
	cert.Tags = append([]string(nil), ext.Tags...)
}

func overlayParams(cert *model.Certificate, p CreateRecordParams) {
	if p.StudentName != "" {
		cert.StudentName = p.StudentName
	}
	if p.Title != "" {
		cert.Title = p.Title
	}
	if p.Issuer != "" {
		cert.Issuer = p.Issuer
	}
	if p.Date != "" {
		cert.Date = p.Date
	}
	if p.Category != "" {
		cert.Category = p.Category
	}
	if p.Subject != "" {
		cert.Subject = p.Subject
	}
	if p.Summary != "" {
		cert.Summary = p.Summary
	}
	if len(p.Tags) > 0 {
		cert.Tags = append(cert.Tags, p.Tags...)
	}
}

func dedupeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
