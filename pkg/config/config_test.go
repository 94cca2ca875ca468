package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Equal(t, 8501, c.Server.Port)
	assert.Equal(t, BackendSQLite, c.Database.Backend)
	assert.Equal(t, "stock_analysis.db", c.Database.Path)
	assert.True(t, c.Database.ReadOnly)
	assert.Equal(t, 5*time.Second, c.Database.BusyTimeout)
	assert.False(t, c.Cache.Enabled)
	assert.Equal(t, time.Minute, c.Cache.MemoryCleanup)
	assert.Equal(t, 60*time.Second, c.Cache.TTL)
	assert.Equal(t, "market-overview", c.Dashboard.DefaultView)
	assert.Equal(t, 5, c.Dashboard.CumulativeTopN)
	assert.NoError(t, c.Validate())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
database:
  path: /data/stats.db
  busy_timeout: 250ms
cache:
  enabled: true
  mode: layered
  ttl: 5m
`)
	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, c.Server.Port)
	assert.Equal(t, "/data/stats.db", c.Database.Path)
	assert.Equal(t, 250*time.Millisecond, c.Database.BusyTimeout)
	assert.True(t, c.Cache.Enabled)
	assert.Equal(t, "layered", c.Cache.Mode)
	assert.Equal(t, 5*time.Minute, c.Cache.TTL)
	// untouched sections keep their defaults
	assert.Equal(t, "info", c.Logger.Level)
	assert.Equal(t, 1400, c.Dashboard.ChartWidth)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad backend", "database:\n  backend: postgres\n"},
		{"bad log level", "logger:\n  level: loud\n"},
		{"port out of range", "server:\n  port: 70000\n"},
		{"clickhouse without host", "database:\n  backend: clickhouse\n"},
		{"bad cache mode", "cache:\n  mode: disk\n"},
		{"top n too large", "dashboard:\n  cumulative_top_n: 50\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadWithEnv(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9000\n")
	t.Setenv("STOCKDASH_DB_PATH", "/tmp/other.db")
	t.Setenv("PORT", "8080")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("REDIS_ADDR", "redis.local:6380")

	c, err := LoadWithEnv(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/other.db", c.Database.Path)
	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, "debug", c.Logger.Level)
	assert.Equal(t, "redis.local", c.Cache.Redis.Host)
	assert.Equal(t, 6380, c.Cache.Redis.Port)
}

func TestLoadWithEnvInvalidOverride(t *testing.T) {
	path := writeConfig(t, "")
	t.Setenv("STOCKDASH_BACKEND", "mysql")

	_, err := LoadWithEnv(path)
	assert.Error(t, err)

	t.Setenv("STOCKDASH_BACKEND", "")
	t.Setenv("REDIS_ADDR", "no-port")
	_, err = LoadWithEnv(path)
	assert.Error(t, err)
}
