package cvault_test

import (
	"bytes"
	"context"
	"reflect"
	"testing"

	"certivault/internal/cvault"
	"certivault/internal/testutil"
)

func TestStateExportImport(t *testing.T) {
	ctx := context.Background()

	t.Run("round-trips the full vault into a fresh store", func(t *testing.T) {
		svc, _ := newService(t, nil)

		asha, err := svc.CreateProfile(ctx, "Asha")
		if err != nil {
			t.Fatalf("CreateProfile() error = %v", err)
		}
		ravi, err := svc.CreateProfile(ctx, "Ravi")
		if err != nil {
			t.Fatalf("CreateProfile() error = %v", err)
		}
		if _, err := svc.UseProfile(ctx, "Ravi"); err != nil {
			t.Fatalf("UseProfile() error = %v", err)
		}
		if err := svc.AddCategory(ctx, "Robotics"); err != nil {
			t.Fatalf("AddCategory() error = %v", err)
		}

		cert, err := svc.CreateRecord(ctx, cvault.CreateRecordParams{
			ProfileID: asha.ID,
			Image:     []byte{0xff, 0xd8, 0x01, 0x02},
			ImageMIME: "image/jpeg",
			Title:     "Math Olympiad",
			Date:      "2024-11-02",
			Category:  "Robotics",
			Tags:      []string{"math"},
		})
		if err != nil {
			t.Fatalf("CreateRecord() error = %v", err)
		}

		state, err := svc.ExportState(ctx)
		if err != nil {
			t.Fatalf("ExportState() error = %v", err)
		}

		var buf bytes.Buffer
		if err := cvault.WriteState(&buf, state); err != nil {
			t.Fatalf("WriteState() error = %v", err)
		}
		restored, err := cvault.ReadState(&buf)
		if err != nil {
			t.Fatalf("ReadState() error = %v", err)
		}

		fresh, freshStore := newService(t, nil)
		if err := fresh.ImportState(ctx, restored); err != nil {
			t.Fatalf("ImportState() error = %v", err)
		}

		profiles, err := fresh.ListProfiles(ctx)
		if err != nil {
			t.Fatalf("ListProfiles() error = %v", err)
		}
		if len(profiles) != 2 {
			t.Errorf("imported %d profiles, want 2", len(profiles))
		}

		activeID, err := freshStore.ActiveProfileID(ctx)
		if err != nil {
			t.Fatalf("ActiveProfileID() error = %v", err)
		}
		if activeID != ravi.ID {
			t.Errorf("active profile = %q, want %q", activeID, ravi.ID)
		}

		got, err := freshStore.FindCertificateByID(ctx, cert.ID)
		if err != nil {
			t.Fatalf("FindCertificateByID() error = %v", err)
		}
		if got == nil {
			t.Fatal("imported record not found")
		}
		if got.Title != cert.Title || got.Date != cert.Date || !bytes.Equal(got.Image, cert.Image) {
			t.Errorf("imported record = %+v, want %+v", got, cert)
		}
		if !reflect.DeepEqual(got.Tags, cert.Tags) {
			t.Errorf("imported tags = %v, want %v", got.Tags, cert.Tags)
		}

		categories, err := fresh.Categories(ctx)
		if err != nil {
			t.Fatalf("Categories() error = %v", err)
		}
		var hasCustom bool
		for _, c := range categories {
			if c == "Robotics" {
				hasCustom = true
			}
		}
		if !hasCustom {
			t.Errorf("Categories() = %v, missing imported custom category", categories)
		}
	})

	t.Run("sync state survives the round trip", func(t *testing.T) {
		store := testutil.NewTestStore(t)
		svc := cvault.NewVaultService(store, nil, nil, cvault.NewNopLogger(), testutil.FixedClock(), testutil.NewStubIDGenerator())

		p, err := svc.CreateProfile(ctx, "Asha")
		if err != nil {
			t.Fatalf("CreateProfile() error = %v", err)
		}
		cert, err := svc.CreateRecord(ctx, cvault.CreateRecordParams{ProfileID: p.ID, Title: "Synced Cert"})
		if err != nil {
			t.Fatalf("CreateRecord() error = %v", err)
		}
		if err := store.MarkSynced(ctx, cert.ID, "file-42"); err != nil {
			t.Fatalf("MarkSynced() error = %v", err)
		}

		state, err := svc.ExportState(ctx)
		if err != nil {
			t.Fatalf("ExportState() error = %v", err)
		}

		fresh, freshStore := newService(t, nil)
		if err := fresh.ImportState(ctx, state); err != nil {
			t.Fatalf("ImportState() error = %v", err)
		}

		got, err := freshStore.FindCertificateByID(ctx, cert.ID)
		if err != nil {
			t.Fatalf("FindCertificateByID() error = %v", err)
		}
		if !got.Synced || got.RemoteFileID != "file-42" {
			t.Errorf("imported record synced=%v remoteFileID=%q, want true/file-42", got.Synced, got.RemoteFileID)
		}

		unsynced, err := freshStore.ListUnsynced(ctx, p.ID)
		if err != nil {
			t.Fatalf("ListUnsynced() error = %v", err)
		}
		if len(unsynced) != 0 {
			t.Errorf("ListUnsynced() = %d records after import, want 0", len(unsynced))
		}
	})
}
