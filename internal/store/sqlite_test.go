package store_test

import (
	"bytes"
	"context"
	"reflect"
	"testing"
	"time"

	"certivault/internal/cvault"
	"certivault/internal/model"
	"certivault/internal/testutil"
)

func newStore(t *testing.T) cvault.Store {
	t.Helper()
	return testutil.NewTestStore(t)
}

func TestSQLiteStore_Profiles(t *testing.T) {
	ctx := context.Background()

	t.Run("creates and finds profiles", func(t *testing.T) {
		s := newStore(t)
		p := &model.Profile{ID: "p1", Name: "Asha", CreatedAt: time.Now().UTC()}

		if err := s.CreateProfile(ctx, p); err != nil {
			t.Fatalf("CreateProfile() error = %v", err)
		}

		byID, err := s.FindProfileByID(ctx, "p1")
		if err != nil {
			t.Fatalf("FindProfileByID() error = %v", err)
		}
		if byID == nil || byID.Name != "Asha" {
			t.Errorf("FindProfileByID() = %+v", byID)
		}

		byName, err := s.FindProfileByName(ctx, "Asha")
		if err != nil {
			t.Fatalf("FindProfileByName() error = %v", err)
		}
		if byName == nil || byName.ID != "p1" {
			t.Errorf("FindProfileByName() = %+v", byName)
		}
	})

	t.Run("missing profiles return nil without error", func(t *testing.T) {
		s := newStore(t)

		p, err := s.FindProfileByID(ctx, "ghost")
		if err != nil {
			t.Fatalf("FindProfileByID() error = %v", err)
		}
		if p != nil {
			t.Errorf("FindProfileByID(ghost) = %+v, want nil", p)
		}
	})

	t.Run("duplicate profile names are rejected by the schema", func(t *testing.T) {
		s := newStore(t)
		now := time.Now().UTC()

		if err := s.CreateProfile(ctx, &model.Profile{ID: "p1", Name: "Asha", CreatedAt: now}); err != nil {
			t.Fatalf("CreateProfile() error = %v", err)
		}
		if err := s.CreateProfile(ctx, &model.Profile{ID: "p2", Name: "Asha", CreatedAt: now}); err == nil {
			t.Error("CreateProfile() with duplicate name succeeded, want constraint error")
		}
	})

	t.Run("lists profiles in creation order", func(t *testing.T) {
		s := newStore(t)
		base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

		for i, name := range []string{"Asha", "Ravi", "Mina"} {
			p := &model.Profile{ID: name, Name: name, CreatedAt: base.Add(time.Duration(i) * time.Hour)}
			if err := s.CreateProfile(ctx, p); err != nil {
				t.Fatalf("CreateProfile(%s) error = %v", name, err)
			}
		}

		profiles, err := s.ListProfiles(ctx)
		if err != nil {
			t.Fatalf("ListProfiles() error = %v", err)
		}
		var names []string
		for _, p := range profiles {
			names = append(names, p.Name)
		}
		want := []string{"Asha", "Ravi", "Mina"}
		if !reflect.DeepEqual(names, want) {
			t.Errorf("ListProfiles() order = %v, want %v", names, want)
		}
	})
}

func TestSQLiteStore_Certificates(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) cvault.Store {
		t.Helper()
		s := newStore(t)
		p := &model.Profile{ID: "p1", Name: "Asha", CreatedAt: time.Now().UTC()}
		if err := s.CreateProfile(ctx, p); err != nil {
			t.Fatalf("CreateProfile() error = %v", err)
		}
		return s
	}

	t.Run("round-trips all certificate fields", func(t *testing.T) {
		s := setup(t)
		c := &model.Certificate{
			ID:            "c1",
			ProfileID:     "p1",
			Image:         []byte{0x01, 0x02},
			OriginalImage: []byte{0x03, 0x04},
			ImageMIME:     "image/jpeg",
			StudentName:   "Asha",
			Title:         "Math Olympiad",
			Issuer:        "City School",
			Date:          "2024-11-02",
			Category:      "Academics",
			Subject:       "Math",
			Summary:       "First place.",
			Tags:          []string{"math", "competition"},
			CreatedAt:     time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC),
		}

		if err := s.InsertCertificate(ctx, c); err != nil {
			t.Fatalf("InsertCertificate() error = %v", err)
		}

		got, err := s.FindCertificateByID(ctx, "c1")
		if err != nil {
			t.Fatalf("FindCertificateByID() error = %v", err)
		}
		if got == nil {
			t.Fatal("FindCertificateByID() = nil")
		}
		if got.Title != c.Title || got.Issuer != c.Issuer || got.Date != c.Date ||
			got.Category != c.Category || got.Subject != c.Subject || got.Summary != c.Summary {
			t.Errorf("FindCertificateByID() = %+v", got)
		}
		if !bytes.Equal(got.Image, c.Image) || !bytes.Equal(got.OriginalImage, c.OriginalImage) {
			t.Error("image bytes did not round-trip")
		}
		if !reflect.DeepEqual(got.Tags, c.Tags) {
			t.Errorf("tags = %v, want %v", got.Tags, c.Tags)
		}
		if got.Synced {
			t.Error("new certificate must start unsynced")
		}
	})

	t.Run("nil tags come back as an empty list", func(t *testing.T) {
		s := setup(t)
		c := &model.Certificate{ID: "c1", ProfileID: "p1", Title: "Untagged", CreatedAt: time.Now().UTC()}

		if err := s.InsertCertificate(ctx, c); err != nil {
			t.Fatalf("InsertCertificate() error = %v", err)
		}
		got, err := s.FindCertificateByID(ctx, "c1")
		if err != nil {
			t.Fatalf("FindCertificateByID() error = %v", err)
		}
		if got.Tags == nil || len(got.Tags) != 0 {
			t.Errorf("tags = %#v, want empty list", got.Tags)
		}
	})

	t.Run("update replaces editable fields", func(t *testing.T) {
		s := setup(t)
		c := &model.Certificate{ID: "c1", ProfileID: "p1", Title: "Before", CreatedAt: time.Now().UTC()}
		if err := s.InsertCertificate(ctx, c); err != nil {
			t.Fatalf("InsertCertificate() error = %v", err)
		}

		c.Title = "After"
		c.Category = "Sports"
		c.Tags = []string{"updated"}
		if err := s.UpdateCertificate(ctx, c); err != nil {
			t.Fatalf("UpdateCertificate() error = %v", err)
		}

		got, err := s.FindCertificateByID(ctx, "c1")
		if err != nil {
			t.Fatalf("FindCertificateByID() error = %v", err)
		}
		if got.Title != "After" || got.Category != "Sports" || !reflect.DeepEqual(got.Tags, []string{"updated"}) {
			t.Errorf("after update = %+v", got)
		}
	})

	t.Run("update of a missing record fails", func(t *testing.T) {
		s := setup(t)
		c := &model.Certificate{ID: "ghost", ProfileID: "p1", CreatedAt: time.Now().UTC()}
		if err := s.UpdateCertificate(ctx, c); err == nil {
			t.Error("UpdateCertificate() on missing record succeeded, want error")
		}
	})

	t.Run("unsynced selection shrinks as records are marked", func(t *testing.T) {
		s := setup(t)
		base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		for i, id := range []string{"c1", "c2", "c3"} {
			c := &model.Certificate{ID: id, ProfileID: "p1", Title: id, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
			if err := s.InsertCertificate(ctx, c); err != nil {
				t.Fatalf("InsertCertificate(%s) error = %v", id, err)
			}
		}

		unsynced, err := s.ListUnsynced(ctx, "p1")
		if err != nil {
			t.Fatalf("ListUnsynced() error = %v", err)
		}
		if len(unsynced) != 3 {
			t.Fatalf("ListUnsynced() = %d records, want 3", len(unsynced))
		}
		// Capture order follows creation time.
		if unsynced[0].ID != "c1" || unsynced[2].ID != "c3" {
			t.Errorf("ListUnsynced() order = %v", unsynced)
		}

		if err := s.MarkSynced(ctx, "c2", "file-9"); err != nil {
			t.Fatalf("MarkSynced() error = %v", err)
		}

		unsynced, err = s.ListUnsynced(ctx, "p1")
		if err != nil {
			t.Fatalf("ListUnsynced() error = %v", err)
		}
		if len(unsynced) != 2 {
			t.Errorf("ListUnsynced() = %d records after MarkSynced, want 2", len(unsynced))
		}

		c2, err := s.FindCertificateByID(ctx, "c2")
		if err != nil {
			t.Fatalf("FindCertificateByID() error = %v", err)
		}
		if !c2.Synced || c2.RemoteFileID != "file-9" {
			t.Errorf("c2 = synced %v remoteFileID %q", c2.Synced, c2.RemoteFileID)
		}
	})

	t.Run("marking a missing record fails", func(t *testing.T) {
		s := setup(t)
		if err := s.MarkSynced(ctx, "ghost", "file-1"); err == nil {
			t.Error("MarkSynced() on missing record succeeded, want error")
		}
	})

	t.Run("inserting for a missing profile violates the foreign key", func(t *testing.T) {
		s := newStore(t)
		c := &model.Certificate{ID: "c1", ProfileID: "nope", CreatedAt: time.Now().UTC()}
		if err := s.InsertCertificate(ctx, c); err == nil {
			t.Error("InsertCertificate() with missing profile succeeded, want error")
		}
	})
}

func TestSQLiteStore_Categories(t *testing.T) {
	ctx := context.Background()

	t.Run("preserves insertion order and ignores duplicates", func(t *testing.T) {
		s := newStore(t)

		for _, name := range []string{"Robotics", "Debate", "Robotics"} {
			if err := s.AddCustomCategory(ctx, name); err != nil {
				t.Fatalf("AddCustomCategory(%s) error = %v", name, err)
			}
		}

		got, err := s.ListCustomCategories(ctx)
		if err != nil {
			t.Fatalf("ListCustomCategories() error = %v", err)
		}
		want := []string{"Robotics", "Debate"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("ListCustomCategories() = %v, want %v", got, want)
		}
	})
}

func TestSQLiteStore_ActiveProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("starts empty and persists the last value", func(t *testing.T) {
		s := newStore(t)

		id, err := s.ActiveProfileID(ctx)
		if err != nil {
			t.Fatalf("ActiveProfileID() error = %v", err)
		}
		if id != "" {
			t.Errorf("ActiveProfileID() = %q, want empty", id)
		}

		if err := s.SetActiveProfileID(ctx, "p1"); err != nil {
			t.Fatalf("SetActiveProfileID() error = %v", err)
		}
		if err := s.SetActiveProfileID(ctx, "p2"); err != nil {
			t.Fatalf("SetActiveProfileID() error = %v", err)
		}

		id, err = s.ActiveProfileID(ctx)
		if err != nil {
			t.Fatalf("ActiveProfileID() error = %v", err)
		}
		if id != "p2" {
			t.Errorf("ActiveProfileID() = %q, want p2", id)
		}
	})
}
