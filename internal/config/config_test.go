package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Empty(t, cfg.KitchenBaseURL)
	assert.Empty(t, cfg.MealsBaseURL)
	assert.Zero(t, cfg.TimeoutSeconds)
	assert.False(t, cfg.EchoJSON)
	assert.Empty(t, cfg.HistoryDB)
	assert.Zero(t, cfg.Timeout())
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("SIZZLE_KITCHEN_BASE_URL", "http://kitchen.internal:5001/api")
	t.Setenv("SIZZLE_TIMEOUT_SECONDS", "10")
	t.Setenv("SIZZLE_ECHO_JSON", "true")
	t.Setenv("SIZZLE_HISTORY_DB", "/var/lib/sizzle/history.db")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://kitchen.internal:5001/api", cfg.KitchenBaseURL)
	assert.Equal(t, 10, cfg.TimeoutSeconds)
	assert.Equal(t, 10*time.Second, cfg.Timeout())
	assert.True(t, cfg.EchoJSON)
	assert.Equal(t, "/var/lib/sizzle/history.db", cfg.HistoryDB)
}

func TestLoad_NegativeTimeout(t *testing.T) {
	t.Setenv("SIZZLE_TIMEOUT_SECONDS", "-5")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout_seconds")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sizzle.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
kitchen_base_url: http://localhost:5001/api
meals_base_url: http://localhost:5000/api
timeout_seconds: 15
echo_json: true
`), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5001/api", cfg.KitchenBaseURL)
	assert.Equal(t, "http://localhost:5000/api", cfg.MealsBaseURL)
	assert.Equal(t, 15, cfg.TimeoutSeconds)
	assert.True(t, cfg.EchoJSON)
}

func TestLoadFile_EnvironmentOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sizzle.yaml")
	require.NoError(t, os.WriteFile(path, []byte("meals_base_url: http://file-value:5000/api\n"), 0o644))

	t.Setenv("SIZZLE_MEALS_BASE_URL", "http://env-value:5000/api")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "http://env-value:5000/api", cfg.MealsBaseURL)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestBaseURLFor(t *testing.T) {
	cfg := &Config{
		KitchenBaseURL: "http://a:5001/api",
		MealsBaseURL:   "http://b:5000/api",
	}

	assert.Equal(t, "http://a:5001/api", cfg.BaseURLFor("kitchen"))
	assert.Equal(t, "http://b:5000/api", cfg.BaseURLFor("meals"))
	assert.Empty(t, cfg.BaseURLFor("other"))
}
