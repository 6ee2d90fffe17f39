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
	t.Setenv("STATUSLOOPS_DATABASE__URL", "postgres://localhost/statusloops")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "9090", cfg.Server.MetricsPort)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 64, cfg.Realtime.BufferSize)
	assert.True(t, cfg.RateLimit.Enabled)
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.url")
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
server:
  port: "3000"
database:
  url: postgres://localhost/fromfile
  max_open_conns: 10
log:
  level: debug
  format: text
realtime:
  buffer_size: 128
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "postgres://localhost/fromfile", cfg.Database.URL)
	assert.Equal(t, 10, cfg.Database.MaxOpenConns)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, 128, cfg.Realtime.BufferSize)
	// Untouched keys keep their defaults.
	assert.Equal(t, 5, cfg.Database.MaxIdleConns)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database:\n  url: postgres://localhost/fromfile\n"), 0o600))

	t.Setenv("STATUSLOOPS_DATABASE__URL", "postgres://localhost/fromenv")
	t.Setenv("STATUSLOOPS_SERVER__READ_TIMEOUT", "30s")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/fromenv", cfg.Database.URL)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
}

func TestLoad_InvalidLogFormat(t *testing.T) {
	t.Setenv("STATUSLOOPS_DATABASE__URL", "postgres://localhost/statusloops")
	t.Setenv("STATUSLOOPS_LOG__FORMAT", "xml")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log.format")
}

func TestLoad_MissingFileIsIgnored(t *testing.T) {
	t.Setenv("STATUSLOOPS_DATABASE__URL", "postgres://localhost/statusloops")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
}
