package cvault

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"certivault/internal/model"
)

// State is the serialized form of the whole local vault: profiles, records,
// the active profile and the custom category list. It round-trips
// losslessly through JSON (image bytes are base64-encoded by encoding/json).
type State struct {
	Profiles         []*model.Profile     `json:"profiles"`
	Certificates     []*model.Certificate `json:"certificates"`
	ActiveProfileID  string               `json:"activeProfileId"`
	CustomCategories []string             `json:"customCategories"`
}

// ExportState collects the full vault state from the store.
func (s *VaultService) ExportState(ctx context.Context) (*State, error) {
	profiles, err := s.store.ListProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing profiles: %w", err)
	}

	var certs []*model.Certificate
	for _, p := range profiles {
		pc, err := s.store.ListCertificates(ctx, p.ID)
		if err != nil {
			return nil, fmt.Errorf("listing records for %s: %w", p.Name, err)
		}
		certs = append(certs, pc...)
	}

	activeID, err := s.store.ActiveProfileID(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading active profile: %w", err)
	}

	custom, err := s.store.ListCustomCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing custom categories: %w", err)
	}

	return &State{
		Profiles:         profiles,
		Certificates:     certs,
		ActiveProfileID:  activeID,
		CustomCategories: custom,
	}, nil
}

// ImportState loads a previously exported state into the store. Intended
// for restoring into a fresh vault; existing rows with colliding ids make
// the import fail partway, so callers should import into an empty store.
func (s *VaultService) ImportState(ctx context.Context, state *State) error {
	for _, p := range state.Profiles {
		if err := s.store.CreateProfile(ctx, p); err != nil {
			return fmt.Errorf("importing profile %s: %w", p.Name, err)
		}
	}
	for _, c := range state.Certificates {
		if err := s.store.InsertCertificate(ctx, c); err != nil {
			return fmt.Errorf("importing record %s: %w", c.ID, err)
		}
	}
	for _, name := range state.CustomCategories {
		if err := s.store.AddCustomCategory(ctx, name); err != nil {
			return fmt.Errorf("importing category %s: %w", name, err)
		}
	}
	if state.ActiveProfileID != "" {
		if err := s.store.SetActiveProfileID(ctx, state.ActiveProfileID); err != nil {
			return fmt.Errorf("restoring active profile: %w", err)
		}
	}

	s.logger.Info("state imported", "profiles", len(state.Profiles), "records", len(state.Certificates))
	return nil
}

// WriteState serializes state as JSON to w.
func WriteState(w io.Writer, state *State) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(state); err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}
	return nil
}

// ReadState deserializes state JSON from r.
func ReadState(r io.Reader) (*State, error) {
	var state State
	if err := json.NewDecoder(r).Decode(&state); err != nil {
		return nil, fmt.Errorf("decoding state: %w", err)
	}
	return &state, nil
}
