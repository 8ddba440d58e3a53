package container

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yusufsyaifudin/marathon/internal/svc/apprepo"
)

type fakeAppRepo struct {
	apprepo.Repo
}

func TestCachedAppRepo(t *testing.T) {
	mr := miniredis.RunT(t)
	maker, err := NewRedisConnMaker(context.Background(), ConfigRedisResources{
		"main": {Mode: "single", Address: []string{mr.Addr()}},
	})
	require.NoError(t, err)
	defer maker.CloseAll()

	persistent := &fakeAppRepo{}

	t.Run("none", func(t *testing.T) {
		repo, err := cachedAppRepo(ConfigServiceCache{Type: CacheNone}, persistent, maker)
		require.NoError(t, err)
		assert.Same(t, persistent, repo)
	})

	t.Run("inmemory", func(t *testing.T) {
		repo, err := cachedAppRepo(ConfigServiceCache{Type: CacheInMemory, Expiry: time.Minute}, persistent, nil)
		require.NoError(t, err)
		assert.IsType(t, &apprepo.CachedRepo{}, repo)
	})

	t.Run("redis", func(t *testing.T) {
		repo, err := cachedAppRepo(ConfigServiceCache{Type: CacheRedis, RedisLabel: "main", Expiry: time.Minute}, persistent, maker)
		require.NoError(t, err)
		assert.IsType(t, &apprepo.CachedRepo{}, repo)
	})

	t.Run("redis unknown label", func(t *testing.T) {
		_, err := cachedAppRepo(ConfigServiceCache{Type: CacheRedis, RedisLabel: "other", Expiry: time.Minute}, persistent, maker)
		assert.Error(t, err)
	})

	t.Run("redis without connection", func(t *testing.T) {
		_, err := cachedAppRepo(ConfigServiceCache{Type: CacheRedis, RedisLabel: "main", Expiry: time.Minute}, persistent, nil)
		assert.Error(t, err)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := cachedAppRepo(ConfigServiceCache{Type: "memcached"}, persistent, maker)
		assert.Error(t, err)
	})
}

func TestSetupServices_NilRepositories(t *testing.T) {
	svc, err := SetupServices(Config{}, nil, nil, nil, nil)
	assert.Error(t, err)
	assert.Nil(t, svc)
}
