package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hed1ad/waterbench/pkg/dataset"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, dataset.DefaultBaseURL, cfg.Data.BaseURL)
	assert.Equal(t, filepath.Join("data", "cache"), cfg.Data.CacheDir)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "waterbench.yaml")
	content := `
data:
  base_url: http://localhost:9000/gecco
  cache_dir: /tmp/wb-cache
logging:
  level: debug
  development: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9000/gecco", cfg.Data.BaseURL)
	assert.Equal(t, "/tmp/wb-cache", cfg.Data.CacheDir)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)

	// Fields absent from the file keep their defaults.
	assert.Equal(t, filepath.Join("reports", "figures"), cfg.Data.FiguresDir)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "waterbench.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: warn\n"), 0o644))

	t.Setenv("WB_LOGGING_LEVEL", "error")
	t.Setenv("WB_DATA_CACHE_DIR", "/var/cache/wb")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Logging.Level)
	assert.Equal(t, "/var/cache/wb", cfg.Data.CacheDir)
}

func TestLoadInvalidLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "waterbench.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: loud\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "waterbench.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging: ["), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLogger(t *testing.T) {
	cfg := &Config{Logging: LoggingConfig{Level: "debug", Development: true}}
	log, err := cfg.Logger()
	require.NoError(t, err)
	require.NotNil(t, log)
	log.Debug("logger built")
}
