package cvault

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"certivault/internal/academic"
	"certivault/internal/model"
)

// SyncEngine reconciles a profile's unsynced certificates against the
// remote folder hierarchy. Each record is mirrored to
// <vault>/<profile>/<period>/<category>/<title>.pdf; the path is recomputed
// on every pass, never cached across invocations, so a retroactive date or
// category edit relocates the record on its next sync. Stale copies at the
// old path are not removed.
type SyncEngine struct {
	store      Store
	drive      DriveClient
	renderer   Renderer
	vaultName  string
	startMonth time.Month
	logger     Logger

	mu       sync.Mutex
	inFlight map[string]bool // profileID -> sync running
}

// NewSyncEngine creates a sync engine. vaultName is the top-level remote
// folder; startMonth is the academic cycle boundary.
func NewSyncEngine(store Store, drive DriveClient, renderer Renderer, vaultName string, startMonth time.Month, logger Logger) *SyncEngine {
	return &SyncEngine{
		store:      store,
		drive:      drive,
		renderer:   renderer,
		vaultName:  vaultName,
		startMonth: startMonth,
		logger:     logger,
		inFlight:   make(map[string]bool),
	}
}

// SyncResult summarizes one sync invocation.
type SyncResult struct {
	Synced int        // records marked synced this invocation
	Failed int        // records that hit a per-record error
	Log    []LogEntry // full log sequence for this invocation
}

// Sync runs one sync invocation for the given profile. Processing is
// strictly sequential: one outstanding remote call at a time, log order
// matching record order. Per-record failures are logged and skipped;
// an authentication failure aborts the remaining batch immediately and
// leaves unprocessed records untouched.
//
// Exactly one Sync may run per profile at a time; a concurrent second
// invocation fails with ErrSyncInProgress.
func (e *SyncEngine) Sync(ctx context.Context, profileID string, report Reporter) (*SyncResult, error) {
	if profileID == "" {
		return nil, ErrNoActiveProfile
	}

	if !e.acquire(profileID) {
		return nil, ErrSyncInProgress
	}
	defer e.release(profileID)

	res := &SyncResult{}
	emit := func(msg string, status LogStatus) {
		entry := LogEntry{Message: msg, Status: status}
		res.Log = append(res.Log, entry)
		if report != nil {
			report(entry)
		}
	}

	profile, err := e.store.FindProfileByID(ctx, profileID)
	if err != nil {
		return res, fmt.Errorf("loading profile: %w", err)
	}
	if profile == nil {
		return res, ErrNoActiveProfile
	}

	if err := e.drive.ValidateSetup(ctx); err != nil {
		return res, fmt.Errorf("validating remote setup: %w", err)
	}

	// Work-set first: an already-synced profile must not trigger any
	// remote calls, including root establishment.
	workSet, err := e.store.ListUnsynced(ctx, profileID)
	if err != nil {
		return res, fmt.Errorf("selecting unsynced records: %w", err)
	}
	if len(workSet) == 0 {
		emit(fmt.Sprintf("%s is already in sync", profile.Name), StatusInfo)
		e.logger.Info("nothing to sync", "profile", profile.Name)
		return res, nil
	}

	emit(fmt.Sprintf("syncing %d record(s) for %s", len(workSet), profile.Name), StatusPending)

	// Folder lookups are deduplicated for the lifetime of this invocation.
	folders := newFolderCache(e.drive)

	vaultFolderID, err := folders.findOrCreate(ctx, e.vaultName, RootFolderID)
	if err != nil {
		emit(fmt.Sprintf("cannot prepare vault folder: %v", err), StatusError)
		return res, fmt.Errorf("ensuring vault folder: %w", err)
	}

	profileFolderID, err := folders.findOrCreate(ctx, profile.Name, vaultFolderID)
	if err != nil {
		emit(fmt.Sprintf("cannot prepare profile folder: %v", err), StatusError)
		return res, fmt.Errorf("ensuring profile folder: %w", err)
	}

	for _, cert := range workSet {
		recErr := e.syncOne(ctx, folders, profileFolderID, cert, emit)
		if recErr == nil {
			res.Synced++
			continue
		}

		res.Failed++
		emit(fmt.Sprintf("failed to sync %q: %v", recordLabel(cert), recErr), StatusError)
		e.logger.Error("record sync failed", "record", cert.ID, "err", recErr)

		if errors.Is(recErr, ErrNotAuthenticated) {
			// Credential is dead; the rest of the batch cannot succeed.
			return res, fmt.Errorf("sync aborted: %w", ErrNotAuthenticated)
		}
	}

	emit(fmt.Sprintf("sync finished: %d synced, %d failed", res.Synced, res.Failed), StatusSuccess)
	e.logger.Info("sync finished", "profile", profile.Name, "synced", res.Synced, "failed", res.Failed)
	return res, nil
}

// syncOne mirrors a single record. Errors are typed so the caller can
// distinguish auth failures from per-record ones.
func (e *SyncEngine) syncOne(ctx context.Context, folders *folderCache, profileFolderID string, cert *model.Certificate, emit func(string, LogStatus)) error {
	period := academic.Classify(cert.Date, e.startMonth)
	category := cert.Category
	if category == "" {
		category = "Other"
	}

	periodFolderID, err := folders.findOrCreate(ctx, period, profileFolderID)
	if err != nil {
		if errors.Is(err, ErrNotAuthenticated) {
			return err
		}
		return &FolderResolutionError{RecordID: cert.ID, Title: cert.Title, Err: err}
	}

	categoryFolderID, err := folders.findOrCreate(ctx, category, periodFolderID)
	if err != nil {
		if errors.Is(err, ErrNotAuthenticated) {
			return err
		}
		return &FolderResolutionError{RecordID: cert.ID, Title: cert.Title, Err: err}
	}

	doc, err := e.renderer.Render([]*model.Certificate{cert})
	if err != nil {
		return &RenderError{RecordID: cert.ID, Title: cert.Title, Err: err}
	}

	filename := DocumentFilename(cert)
	fileID, err := e.drive.UploadFile(ctx, categoryFolderID, filename, "application/pdf", bytes.NewReader(doc), int64(len(doc)))
	if err != nil {
		if errors.Is(err, ErrNotAuthenticated) {
			return err
		}
		return &UploadError{RecordID: cert.ID, Title: cert.Title, Err: err}
	}

	// Persist before touching the next record so a mid-batch crash never
	// re-uploads a confirmed record.
	if err := e.store.MarkSynced(ctx, cert.ID, fileID); err != nil {
		return fmt.Errorf("marking record synced: %w", err)
	}

	emit(fmt.Sprintf("synced %q to %s/%s", recordLabel(cert), period, category), StatusSuccess)
	e.logger.Info("record synced", "record", cert.ID, "period", period, "category", category, "file", filename)
	return nil
}

func (e *SyncEngine) acquire(profileID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inFlight[profileID] {
		return false
	}
	e.inFlight[profileID] = true
	return true
}

func (e *SyncEngine) release(profileID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.inFlight, profileID)
}

// folderCache deduplicates FindOrCreateFolder calls within one invocation.
type folderCache struct {
	drive DriveClient
	ids   map[string]string // parentID + "\x00" + name -> folderID
}

func newFolderCache(drive DriveClient) *folderCache {
	return &folderCache{drive: drive, ids: make(map[string]string)}
}

func (c *folderCache) findOrCreate(ctx context.Context, name, parentID string) (string, error) {
	key := parentID + "\x00" + name
	if id, ok := c.ids[key]; ok {
		return id, nil
	}
	id, err := c.drive.FindOrCreateFolder(ctx, name, parentID)
	if err != nil {
		return "", err
	}
	c.ids[key] = id
	return id, nil
}

// DocumentFilename derives the deterministic remote filename for a record
// from its title. Path separators and control characters are stripped so
// the name cannot escape its folder.
func DocumentFilename(cert *model.Certificate) string {
	name := strings.TrimSpace(cert.Title)
	var b strings.Builder
	for _, r := range name {
		switch {
		case r == '/' || r == '\\':
			b.WriteRune('-')
		case r < 0x20:
			// drop control characters
		default:
			b.WriteRune(r)
		}
	}
	name = strings.TrimSpace(b.String())
	if name == "" {
		name = "certificate-" + shortID(cert.ID)
	}
	return name + ".pdf"
}

func recordLabel(cert *model.Certificate) string {
	if cert.Title != "" {
		return cert.Title
	}
	return "certificate " + shortID(cert.ID)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
