package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		k, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(k, "STUDYBUDDY_") || k == "GEMINI_API_KEY" || k == "PORT" {
			t.Setenv(k, "")
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	cfg, err := LoadFrom(dir, filepath.Join(dir, "missing.toml"))
	require.NoError(t, err)

	assert.Equal(t, ModeLocal, cfg.Mode)
	assert.Equal(t, "5050", cfg.Port)
	assert.Equal(t, filepath.Join("data", "logs.jsonl"), cfg.LogPath())
	assert.Equal(t, "http://localhost:5050/log", cfg.LoggerURL)
	assert.Equal(t, BackendFile, cfg.StateBackend)
	assert.Equal(t, filepath.Join(dir, "state"), cfg.StateDir)
	assert.Equal(t, "gemini-3-flash-preview", cfg.ModelName)
	assert.True(t, cfg.GoogleSearch)
	assert.True(t, cfg.UseMockLLM, "no key in local mode falls back to the mock")
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
port = "6060"
api_key = "from-file"
state_backend = "sqlite"
rate_limit = 5.0
`), 0o600))
	t.Setenv("STUDYBUDDY_PORT", "7070")

	cfg, err := LoadFrom(dir, path)
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, "from-file", cfg.APIKey)
	assert.Equal(t, BackendSQLite, cfg.StateBackend)
	assert.Equal(t, 5.0, cfg.RateLimit)
	assert.False(t, cfg.UseMockLLM)
}

func TestExplicitMockWins(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Setenv("STUDYBUDDY_API_KEY", "k")
	t.Setenv("STUDYBUDDY_USE_MOCK_LLM", "1")

	cfg, err := LoadFrom(dir, "")
	require.NoError(t, err)
	assert.True(t, cfg.UseMockLLM)
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	t.Setenv("STUDYBUDDY_STATE_BACKEND", "redis")
	_, err := LoadFrom(dir, "")
	assert.Error(t, err)

	t.Setenv("STUDYBUDDY_STATE_BACKEND", "firestore")
	_, err = LoadFrom(dir, "")
	assert.Error(t, err)

	t.Setenv("STUDYBUDDY_GCP_PROJECT", "p")
	cfg, err := LoadFrom(dir, "")
	require.NoError(t, err)
	assert.Equal(t, BackendFirestore, cfg.StateBackend)

	t.Setenv("STUDYBUDDY_STATE_BACKEND", "")
	t.Setenv("STUDYBUDDY_GCP_PROJECT", "")
	t.Setenv("STUDYBUDDY_MODE", "gcp")
	_, err = LoadFrom(dir, "")
	assert.Error(t, err)
}

func TestBadTOML(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("port = "), 0o600))

	_, err := LoadFrom(dir, path)
	assert.Error(t, err)
}
