package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"AGRI_MODE", "AGRI_PORT", "AGRI_ADVISOR", "AGRI_GCP_PROJECT",
		"AGRI_STORAGE_BACKEND", "AGRI_TELEMETRY", "AGRI_MAX_UPLOAD_MB",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ModeLocal, cfg.Mode)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, AdvisorMock, cfg.Advisor)
	assert.Equal(t, StorageMemory, cfg.StorageBackend)
	assert.False(t, cfg.Telemetry)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes())
}

func TestLoadGCPModeRequiresProject(t *testing.T) {
	clearEnv(t)
	t.Setenv("AGRI_MODE", "gcp")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("AGRI_GCP_PROJECT", "agri-prod")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, AdvisorVertex, cfg.Advisor)
}

func TestLoadRejectsUnknownBackends(t *testing.T) {
	clearEnv(t)

	t.Setenv("AGRI_ADVISOR", "oracle")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("AGRI_ADVISOR", "ollama")
	t.Setenv("AGRI_STORAGE_BACKEND", "tape")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("AGRI_STORAGE_BACKEND", "SQLite")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorageSQLite, cfg.StorageBackend)
}

func TestLoadRejectsBadUploadLimit(t *testing.T) {
	clearEnv(t)

	t.Setenv("AGRI_MAX_UPLOAD_MB", "lots")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("AGRI_MAX_UPLOAD_MB", "0")
	_, err = Load()
	assert.Error(t, err)
}

func TestGetBoolEnv(t *testing.T) {
	t.Setenv("AGRI_FLAG", "true")
	assert.True(t, getBoolEnv("AGRI_FLAG", false))

	t.Setenv("AGRI_FLAG", "no")
	assert.False(t, getBoolEnv("AGRI_FLAG", true))

	t.Setenv("AGRI_FLAG", "")
	assert.True(t, getBoolEnv("AGRI_FLAG", true))
}
