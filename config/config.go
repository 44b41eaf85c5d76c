// ABOUTME: Application configuration loaded from YAML, .env, and environment
// ABOUTME: Resolves XDG paths for the database, config file, and backup settings
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/remotearmz/commandcenter/models"
	"gopkg.in/yaml.v3"
)

// AppName names the XDG subdirectories used for config and data.
const AppName = "commandcenter"

const (
	ProviderDrive = "drive"
	ProviderS3    = "s3"
	ProviderLocal = "local"
	ProviderCharm = "charm"
)

var Providers = []string{ProviderDrive, ProviderS3, ProviderLocal, ProviderCharm}

type Config struct {
	DatabasePath string       `yaml:"database_path"`
	Location     string       `yaml:"location"`
	Backup       BackupConfig `yaml:"backup"`
	Web          WebConfig    `yaml:"web"`
}

type BackupConfig struct {
	Provider    string                 `yaml:"provider"`
	Frequency   models.BackupFrequency `yaml:"frequency"`
	MaxVersions int                    `yaml:"max_versions"`
	DriveFolder string                 `yaml:"drive_folder"`
	S3Bucket    string                 `yaml:"s3_bucket"`
	S3Prefix    string                 `yaml:"s3_prefix"`
	S3Region    string                 `yaml:"s3_region"`
	S3Endpoint  string                 `yaml:"s3_endpoint"`
	LocalPath   string                 `yaml:"local_path"`
	CharmHost   string                 `yaml:"charm_host"`
}

type WebConfig struct {
	Port int `yaml:"port"`
}

// Dir returns the XDG config directory for the application.
func Dir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// DataDir returns the XDG data directory for the application.
func DataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// Path returns the default config file location.
func Path() string {
	return filepath.Join(Dir(), "config.yaml")
}

func Default() *Config {
	return &Config{
		DatabasePath: filepath.Join(DataDir(), "commandcenter.db"),
		Backup: BackupConfig{
			Provider:    ProviderLocal,
			Frequency:   models.FrequencyDaily,
			MaxVersions: 5,
			DriveFolder: "CommandCenter Backups",
			S3Prefix:    "commandcenter/",
			LocalPath:   filepath.Join(DataDir(), "backups"),
			CharmHost:   "charm.2389.dev",
		},
		Web: WebConfig{Port: 8080},
	}
}

// Load reads the config file at path, or the default path when empty. A
// missing file yields defaults. A .env file in the working directory is
// loaded first, and COMMANDCENTER_* variables override file values.
func Load(path string) (*Config, error) {
	if path == "" {
		path = Path()
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("COMMANDCENTER_DB_PATH"); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv("COMMANDCENTER_LOCATION"); v != "" {
		cfg.Location = v
	}
	if v := os.Getenv("COMMANDCENTER_BACKUP_PROVIDER"); v != "" {
		cfg.Backup.Provider = v
	}
	if v := os.Getenv("COMMANDCENTER_BACKUP_FREQUENCY"); v != "" {
		cfg.Backup.Frequency = models.BackupFrequency(v)
	}
	if v := os.Getenv("COMMANDCENTER_BACKUP_MAX_VERSIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Backup.MaxVersions = n
		}
	}
	if v := os.Getenv("COMMANDCENTER_DRIVE_FOLDER"); v != "" {
		cfg.Backup.DriveFolder = v
	}
	if v := os.Getenv("COMMANDCENTER_S3_BUCKET"); v != "" {
		cfg.Backup.S3Bucket = v
	}
	if v := os.Getenv("COMMANDCENTER_S3_PREFIX"); v != "" {
		cfg.Backup.S3Prefix = v
	}
	if v := os.Getenv("COMMANDCENTER_S3_REGION"); v != "" {
		cfg.Backup.S3Region = v
	}
	if v := os.Getenv("COMMANDCENTER_S3_ENDPOINT"); v != "" {
		cfg.Backup.S3Endpoint = v
	}
	if v := os.Getenv("COMMANDCENTER_BACKUP_PATH"); v != "" {
		cfg.Backup.LocalPath = v
	}
	if v := os.Getenv("COMMANDCENTER_CHARM_HOST"); v != "" {
		cfg.Backup.CharmHost = v
	}
	if v := os.Getenv("COMMANDCENTER_WEB_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Web.Port = n
		}
	}
}

func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("database_path must not be empty")
	}
	if _, err := c.TimeLocation(); err != nil {
		return err
	}
	valid := false
	for _, p := range Providers {
		if c.Backup.Provider == p {
			valid = true
		}
	}
	if !valid {
		return fmt.Errorf("unknown backup provider %q", c.Backup.Provider)
	}
	if !c.Backup.Frequency.Valid() {
		return fmt.Errorf("unknown backup frequency %q", c.Backup.Frequency)
	}
	if c.Backup.MaxVersions < 1 {
		return fmt.Errorf("backup max_versions must be at least 1, got %d", c.Backup.MaxVersions)
	}
	if c.Backup.Provider == ProviderS3 && c.Backup.S3Bucket == "" {
		return fmt.Errorf("s3 backups need s3_bucket")
	}
	return nil
}

// TimeLocation returns the zone used for analytics day boundaries.
func (c *Config) TimeLocation() (*time.Location, error) {
	if c.Location == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Location)
	if err != nil {
		return nil, fmt.Errorf("invalid location %q: %w", c.Location, err)
	}
	return loc, nil
}

// Save writes the config as YAML, creating the directory if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = Path()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
