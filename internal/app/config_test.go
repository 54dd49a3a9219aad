package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", cfg.APIBaseURL)
	assert.Equal(t, "local", cfg.UserID)
	assert.Equal(t, 60, cfg.TimeoutSeconds)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, -1, cfg.Credits)
}

func TestLoadConfigBackfillsBlanks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("api_base_url: \"\"\nuser_id: investor-7\ntimeout_seconds: 0\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", cfg.APIBaseURL)
	assert.Equal(t, "investor-7", cfg.UserID)
	assert.Equal(t, 60, cfg.TimeoutSeconds)
}

func TestConfigSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	want := Config{
		APIBaseURL:     "https://api.example.com",
		UserID:         "investor-7",
		TimeoutSeconds: 30,
		StorageRoot:    "/tmp/flipbot",
		LogLevel:       "debug",
		Credits:        5,
	}
	require.NoError(t, SaveConfig(want, path))

	got, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadConfigRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("api_base_url: [broken"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
