package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DEFAULT_OWNER_ID", "")
	t.Setenv("TIME_ZONE", "")

	cfg := Load()

	assert.Equal(t, int64(1), cfg.DefaultOwnerID)
	assert.Equal(t, "Asia/Tokyo", cfg.TimeZone)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
}

func TestLoadDefaultOwnerOverride(t *testing.T) {
	t.Setenv("DEFAULT_OWNER_ID", "42")

	assert.Equal(t, int64(42), Load().DefaultOwnerID)
}

func TestLocationFallsBackToUTC(t *testing.T) {
	assert.Equal(t, "UTC", Config{TimeZone: "Not/AZone"}.Location().String())
	assert.Equal(t, "UTC", Config{}.Location().String())
}

func TestAdminConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "admin.yml")
	require.NoError(t, os.WriteFile(path, []byte("admin:\n  defaultPageSize: 20\n  maxPageSize: 40\n  exportRowLimit: 1000\n"), 0o600))

	v := viper.New()
	v.SetConfigFile(path)

	holder, err := loadAdminConfig(v, false)
	require.NoError(t, err)
	assert.Equal(t, AdminConfig{DefaultPageSize: 20, MaxPageSize: 40, ExportRowLimit: 1000}, holder.Get())
}

func TestAdminConfigRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "admin.yml")
	require.NoError(t, os.WriteFile(path, []byte("admin:\n  defaultPageSize: 50\n  maxPageSize: 10\n"), 0o600))

	v := viper.New()
	v.SetConfigFile(path)

	_, err := loadAdminConfig(v, false)
	assert.Error(t, err)
}

func TestAdminConfigDefaultsWithoutFile(t *testing.T) {
	v := viper.New()
	v.SetConfigName("admin-missing")
	v.SetConfigType("yml")
	v.AddConfigPath(t.TempDir())

	holder, err := loadAdminConfig(v, true)
	require.NoError(t, err)
	assert.Equal(t, DefaultAdminConfig(), holder.Get())
}
