// ABOUTME: Tests for configuration loading, env overrides, and validation
// ABOUTME: Redirects XDG directories to temp dirs for isolation
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adrg/xdg"
	"github.com/remotearmz/commandcenter/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useTempXDG(t *testing.T) string {
	t.Helper()
	origConfig, origData := xdg.ConfigHome, xdg.DataHome
	tmp := t.TempDir()
	xdg.ConfigHome = filepath.Join(tmp, "config")
	xdg.DataHome = filepath.Join(tmp, "data")
	t.Cleanup(func() {
		xdg.ConfigHome = origConfig
		xdg.DataHome = origData
	})
	return tmp
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	tmp := useTempXDG(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmp, "data", AppName, "commandcenter.db"), cfg.DatabasePath)
	assert.Equal(t, ProviderLocal, cfg.Backup.Provider)
	assert.Equal(t, models.FrequencyDaily, cfg.Backup.Frequency)
	assert.Equal(t, 5, cfg.Backup.MaxVersions)
	assert.Equal(t, 8080, cfg.Web.Port)
	assert.True(t, strings.HasPrefix(Path(), filepath.Join(tmp, "config")))
}

func TestSaveThenLoad(t *testing.T) {
	useTempXDG(t)

	cfg := Default()
	cfg.Location = "UTC"
	cfg.Backup.Provider = ProviderS3
	cfg.Backup.S3Bucket = "crm-backups"
	cfg.Backup.Frequency = models.FrequencyWeekly
	require.NoError(t, cfg.Save(""))

	info, err := os.Stat(Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestEnvOverridesWinOverFile(t *testing.T) {
	useTempXDG(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database_path: /from/file.db
backup:
  provider: local
  max_versions: 3
web:
  port: 9000
`), 0600))

	t.Setenv("COMMANDCENTER_DB_PATH", "/from/env.db")
	t.Setenv("COMMANDCENTER_BACKUP_MAX_VERSIONS", "8")
	t.Setenv("COMMANDCENTER_WEB_PORT", "not-a-number")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/from/env.db", cfg.DatabasePath)
	assert.Equal(t, 8, cfg.Backup.MaxVersions)
	assert.Equal(t, 9000, cfg.Web.Port)
	assert.Equal(t, models.FrequencyDaily, cfg.Backup.Frequency)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"unknown provider", func(c *Config) { c.Backup.Provider = "ftp" }, "unknown backup provider"},
		{"bad frequency", func(c *Config) { c.Backup.Frequency = "yearly" }, "unknown backup frequency"},
		{"zero versions", func(c *Config) { c.Backup.MaxVersions = 0 }, "max_versions"},
		{"s3 without bucket", func(c *Config) { c.Backup.Provider = ProviderS3 }, "s3_bucket"},
		{"bad location", func(c *Config) { c.Location = "Mars/Olympus_Mons" }, "invalid location"},
		{"empty db path", func(c *Config) { c.DatabasePath = "" }, "database_path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	useTempXDG(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backup: [unterminated"), 0600))

	_, err := Load(path)
	assert.Error(t, err)
}
