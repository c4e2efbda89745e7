package app

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/ads-dashboard/internal/config"
	"github.com/ignite/ads-dashboard/internal/storage"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load(t.TempDir() + "/missing.yaml")
	require.NoError(t, err)
	cfg.Storage.LocalPath = t.TempDir()
	cfg.GoogleAds.CustomerID = "7867388610"
	return cfg
}

func TestNewLocalOnly(t *testing.T) {
	a, err := New(context.Background(), testConfig(t))
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.Redis)
	assert.Nil(t, a.DB)
	assert.Equal(t, storage.TypeLocal, a.Store.Name())
	assert.NotNil(t, a.Dashboard)
	assert.NotNil(t, a.Executor)
	assert.Equal(t, "local", lockBackend(a.Redis, a.DB))
}

func TestNewWithRedisStorage(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.Redis.URL = "redis://" + mr.Addr()
	cfg.Storage.Type = storage.TypeRedis

	a, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()

	require.NotNil(t, a.Redis)
	assert.Equal(t, storage.TypeRedis, a.Store.Name())
	assert.Equal(t, "redis", lockBackend(a.Redis, a.DB))
}

func TestNewUnreachableRedisIsDropped(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := testConfig(t)
	cfg.Redis.URL = "redis://" + addr

	a, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()
	assert.Nil(t, a.Redis)
}

func TestNewPostgresStorageRequiresDatabase(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.Type = storage.TypePostgres

	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}
