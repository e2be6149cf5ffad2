package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// DefaultBaseCategories is the fixed category list every vault starts with.
// Custom categories appended by the user live in the database, not here.
var DefaultBaseCategories = []string{
	"Academics",
	"Sports",
	"Arts",
	"Music",
	"Extracurricular",
	"Other",
}

// Config represents the main configuration for certivault.
type Config struct {
	VaultName string `toml:"vault_name"` // top-level remote folder name
	BaseDir   string `toml:"base_dir"`
	LogDir    string `toml:"log_dir"`

	// AcademicYearStartMonth is the calendar month (1-12) a new academic
	// cycle begins on. Defaults to 4 (April) when unset.
	AcademicYearStartMonth int `toml:"academic_year_start_month"`

	BaseCategories []string `toml:"base_categories"`

	Drive      DriveConfig      `toml:"drive"`
	Database   DatabaseConfig   `toml:"database"`
	Extraction ExtractionConfig `toml:"extraction"`
	Encryption EncryptionConfig `toml:"encryption"`
}

// DriveConfig configures the remote hierarchy backend.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DriveConfig struct {
	Type string `toml:"type"` // "drive", "s3", or "memory"

	// Drive-specific fields (only used when Type == "drive")
	BaseURL   string `toml:"base_url,omitempty"`
	UploadURL string `toml:"upload_url,omitempty"`
	TokenPath string `toml:"token_path,omitempty"`

	// S3-specific fields (only used when Type == "s3")
	S3Bucket string `toml:"s3_bucket,omitempty"`
	S3Prefix string `toml:"s3_prefix,omitempty"`
	S3Region string `toml:"s3_region,omitempty"`
}

// DatabaseConfig configures the local record store.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DatabaseConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// ExtractionConfig configures the metadata extraction service.
type ExtractionConfig struct {
	Type   string `toml:"type"`             // "genai" or "none"
	APIKey string `toml:"api_key,omitempty"`
	Model  string `toml:"model,omitempty"`

	// MaxImageEdge caps the longest image edge (pixels) before upload to
	// the extraction service. 0 means no downscaling.
	MaxImageEdge int `toml:"max_image_edge,omitempty"`
}

// EncryptionConfig holds paths to the age key pair used for export archives.
type EncryptionConfig struct {
	Type           string `toml:"type"` // "age" (default) or "test"
	PublicKeyPath  string `toml:"public_key_path"`
	PrivateKeyPath string `toml:"private_key_path"`
}

// NewConfig creates a Config with the provided base directory and sensible
// defaults for everything else.
func NewConfig(baseDir string) *Config {
	return &Config{
		VaultName:              "CertiVault",
		BaseDir:                baseDir,
		LogDir:                 filepath.Join(baseDir, "log"),
		AcademicYearStartMonth: 4,
		BaseCategories:         append([]string(nil), DefaultBaseCategories...),
		Drive: DriveConfig{
			Type:      "drive",
			TokenPath: filepath.Join(baseDir, "drive_token"),
		},
		Database: DatabaseConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "data"),
		},
		Extraction: ExtractionConfig{
			Type:         "none",
			MaxImageEdge: 1600,
		},
		Encryption: EncryptionConfig{
			PublicKeyPath:  filepath.Join(baseDir, "keys", "certivault.pub"),
			PrivateKeyPath: filepath.Join(baseDir, "keys", "certivault.key"),
		},
	}
}

// StartMonth returns the configured academic cycle start month, defaulting
// to April when the field is unset or out of range.
func (c *Config) StartMonth() int {
	if c.AcademicYearStartMonth < 1 || c.AcademicYearStartMonth > 12 {
		return 4
	}
	return c.AcademicYearStartMonth
}

// Categories returns the base category list, falling back to the default
// set when the config does not override it.
func (c *Config) Categories() []string {
	if len(c.BaseCategories) == 0 {
		return append([]string(nil), DefaultBaseCategories...)
	}
	return c.BaseCategories
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
