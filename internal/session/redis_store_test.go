package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	store, err := NewRedisStore(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestRevokeAndCheck(t *testing.T) {
	store, _ := setupTestRedis(t)
	ctx := context.Background()

	revoked, err := store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)))

	revoked, err = store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = store.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRevocationExpiresWithToken(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.Revoke(ctx, "jti-1", time.Now().Add(time.Minute)))
	mr.FastForward(2 * time.Minute)

	revoked, err := store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRevokeExpiredTokenIsNoop(t *testing.T) {
	store, mr := setupTestRedis(t)

	require.NoError(t, store.Revoke(context.Background(), "old", time.Now().Add(-time.Second)))
	assert.False(t, mr.Exists("revoked:old"))
}

func TestNewRedisStoreBadURL(t *testing.T) {
	_, err := NewRedisStore(context.Background(), "not a url")
	assert.Error(t, err)
}

func TestRedisUnavailable(t *testing.T) {
	mr := miniredis.NewMiniRedis()
	require.NoError(t, mr.Start())
	store := NewRedisStoreWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1}))
	t.Cleanup(func() { _ = store.Close() })
	mr.Close()

	_, err := store.IsRevoked(context.Background(), "jti")
	assert.Error(t, err)
}
