package config_test

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"certivault/internal/config"
)

func TestConfigDefaults(t *testing.T) {
	cfg := config.NewConfig("/data/certivault")

	if cfg.VaultName != "CertiVault" {
		t.Errorf("VaultName = %q", cfg.VaultName)
	}
	if cfg.StartMonth() != 4 {
		t.Errorf("StartMonth() = %d, want 4", cfg.StartMonth())
	}
	if cfg.Drive.Type != "drive" || cfg.Database.Type != "sqlite" || cfg.Extraction.Type != "none" {
		t.Errorf("backend defaults = %s/%s/%s", cfg.Drive.Type, cfg.Database.Type, cfg.Extraction.Type)
	}
	if cfg.Database.DataDir != filepath.Join("/data/certivault", "data") {
		t.Errorf("DataDir = %q", cfg.Database.DataDir)
	}
}

func TestStartMonth(t *testing.T) {
	tests := []struct {
		name  string
		month int
		want  int
	}{
		{"unset defaults to April", 0, 4},
		{"valid month is kept", 7, 7},
		{"January is valid", 1, 1},
		{"out of range falls back", 13, 4},
		{"negative falls back", -2, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{AcademicYearStartMonth: tt.month}
			if got := cfg.StartMonth(); got != tt.want {
				t.Errorf("StartMonth() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCategoriesFallback(t *testing.T) {
	cfg := &config.Config{}
	got := cfg.Categories()
	if len(got) != len(config.DefaultBaseCategories) {
		t.Errorf("Categories() = %v, want defaults", got)
	}

	cfg.BaseCategories = []string{"Only"}
	if got := cfg.Categories(); len(got) != 1 || got[0] != "Only" {
		t.Errorf("Categories() = %v, want [Only]", got)
	}
}

func TestManagerRoundTrip(t *testing.T) {
	m := &config.Manager{}
	original := config.NewConfig("/data/cv")
	original.AcademicYearStartMonth = 7
	original.Drive.Type = "s3"
	original.Drive.S3Bucket = "certs"
	original.Drive.S3Region = "eu-west-1"
	original.Extraction.Type = "genai"
	original.Extraction.Model = "gemini-2.0-flash"

	var buf bytes.Buffer
	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got.VaultName != original.VaultName || got.AcademicYearStartMonth != 7 {
		t.Errorf("Read() = %+v", got)
	}
	if got.Drive.Type != "s3" || got.Drive.S3Bucket != "certs" || got.Drive.S3Region != "eu-west-1" {
		t.Errorf("drive config = %+v", got.Drive)
	}
	if got.Extraction.Type != "genai" || got.Extraction.Model != "gemini-2.0-flash" {
		t.Errorf("extraction config = %+v", got.Extraction)
	}
}

func TestManagerRead(t *testing.T) {
	t.Run("decodes a minimal document", func(t *testing.T) {
		doc := `
vault_name = "Family Certs"
academic_year_start_month = 9

[drive]
type = "memory"

[database]
type = "memory"
`
		m := &config.Manager{}
		cfg, err := m.Read(strings.NewReader(doc))
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		if cfg.VaultName != "Family Certs" || cfg.StartMonth() != 9 {
			t.Errorf("Read() = %+v", cfg)
		}
		if cfg.Drive.Type != "memory" || cfg.Database.Type != "memory" {
			t.Errorf("backends = %s/%s", cfg.Drive.Type, cfg.Database.Type)
		}
	})

	t.Run("rejects invalid TOML", func(t *testing.T) {
		m := &config.Manager{}
		if _, err := m.Read(strings.NewReader("vault_name = ")); err == nil {
			t.Error("Read() on invalid TOML succeeded, want error")
		}
	})
}

func TestInit(t *testing.T) {
	t.Run("creates the file and parent directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "conf", "certivault.toml")
		cfg := config.NewConfig("/data/cv")

		if err := config.Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := config.ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.VaultName != cfg.VaultName {
			t.Errorf("ReadFromFile() = %+v", got)
		}
	})

	t.Run("refuses to overwrite an existing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "certivault.toml")
		cfg := config.NewConfig("/data/cv")

		if err := config.Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}
		if err := config.Init(path, cfg); err == nil {
			t.Error("second Init() succeeded, want error")
		}
	})
}
