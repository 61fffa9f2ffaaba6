package cache_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/geocoder89/taskhub/internal/cache"
	"github.com/geocoder89/taskhub/internal/cache/redisclient"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func testRedis(t *testing.T) *redisclient.Client {
	t.Helper()

	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}

	c, err := redisclient.New(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, c.Ping(ctx))

	return c
}

func TestRedisProfiles_RoundTripAndMisses(t *testing.T) {
	rdb := testRedis(t).Raw()
	profiles := cache.NewRedisProfiles(rdb, time.Minute)
	ctx := context.Background()

	p := user.Profile{ID: uuid.NewString(), Name: "Ada", Email: "ada@example.com"}
	t.Cleanup(func() { _ = rdb.Del(context.Background(), "profile:"+p.ID).Err() })

	_, ok, err := profiles.GetProfile(ctx, p.ID)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, profiles.SetProfile(ctx, p))

	got, ok, err := profiles.GetProfile(ctx, p.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, p, got)

	ttl, err := rdb.TTL(ctx, "profile:"+p.ID).Result()
	require.NoError(t, err)
	require.Greater(t, ttl, time.Duration(0))

	require.NoError(t, profiles.DeleteProfile(ctx, p.ID))
	_, ok, err = profiles.GetProfile(ctx, p.ID)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRedisProfiles_CorruptEntryIsMiss(t *testing.T) {
	rdb := testRedis(t).Raw()
	profiles := cache.NewRedisProfiles(rdb, time.Minute)
	ctx := context.Background()

	id := uuid.NewString()
	t.Cleanup(func() { _ = rdb.Del(context.Background(), "profile:"+id).Err() })

	require.NoError(t, rdb.Set(ctx, "profile:"+id, "not-json", time.Minute).Err())

	_, ok, err := profiles.GetProfile(ctx, id)
	require.NoError(t, err)
	require.False(t, ok)
}
