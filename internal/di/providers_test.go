package di

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"StockDash/internal/testutil"
	"StockDash/pkg/config"
	applogger "StockDash/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Default()
	require.NoError(t, err)
	cfg.Database.Path = testutil.StatsDB(t)
	return cfg
}

func TestProvideDBClientCleanupClosesPool(t *testing.T) {
	cfg := testConfig(t)

	client, cleanup, err := ProvideDBClient(cfg, applogger.Nop())
	require.NoError(t, err)
	require.NoError(t, client.DB().PingContext(context.Background()))

	cleanup()
	assert.Error(t, client.DB().PingContext(context.Background()))
}

func TestProvideDBClientMissingFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.Database.Path = filepath.Join(t.TempDir(), "missing.db")

	client, cleanup, err := ProvideDBClient(cfg, applogger.Nop())
	assert.Error(t, err)
	assert.Nil(t, client)
	assert.Nil(t, cleanup)
}

func TestProvideCache(t *testing.T) {
	cfg := testConfig(t)

	c, err := ProvideCache(cfg)
	require.NoError(t, err)
	assert.Nil(t, c, "disabled")

	cfg.Cache.Enabled = true
	cfg.Cache.MemoryCleanup = 10 * time.Millisecond
	c, err = ProvideCache(cfg)
	require.NoError(t, err)
	require.NotNil(t, c)
	t.Cleanup(func() { _ = c.Close() })

	ctx := context.Background()
	require.NoError(t, c.SetBytes(ctx, "k", []byte("v"), time.Minute))
	b, ok, err := c.GetBytes(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), b)
}

func TestProvideCacheRedisUnreachable(t *testing.T) {
	cfg := testConfig(t)
	cfg.Cache.Enabled = true
	cfg.Cache.Mode = "redis"
	cfg.Cache.Redis.Host = "127.0.0.1"
	cfg.Cache.Redis.Port = 1

	_, err := ProvideCache(cfg)
	assert.Error(t, err)
}
