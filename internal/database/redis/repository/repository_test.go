package repository

import (
	"context"
	"testing"
	"time"

	client "joingo/internal/database/client"
	"joingo/internal/telemetry"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *client.RedisClient) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, client.NewRedisClientFrom(zap.NewNop(), rdb)
}

func TestRateLimiter_Consume(t *testing.T) {
	mr, rc := newTestRedis(t)
	repo := NewRateLimiterRepository(&telemetry.Trace{}, rc)
	ctx := context.Background()

	for want := 2; want >= 0; want-- {
		remaining, ttl, err := repo.Consume(ctx, "auth", "10.0.0.1", 3, 60)
		require.NoError(t, err)
		assert.Equal(t, want, remaining)
		assert.Greater(t, ttl, int64(0))
	}

	remaining, _, err := repo.Consume(ctx, "auth", "10.0.0.1", 3, 60)
	require.ErrorIs(t, err, ErrRateLimitExceeded)
	assert.Zero(t, remaining)

	// 其他 subject 不受影響
	_, _, err = repo.Consume(ctx, "auth", "10.0.0.2", 3, 60)
	require.NoError(t, err)

	mr.FastForward(61 * time.Second)
	remaining, _, err = repo.Consume(ctx, "auth", "10.0.0.1", 3, 60)
	require.NoError(t, err)
	assert.Equal(t, 2, remaining)
}

func TestRateLimiter_Reset(t *testing.T) {
	_, rc := newTestRedis(t)
	repo := NewRateLimiterRepository(&telemetry.Trace{}, rc)
	ctx := context.Background()

	_, _, err := repo.Consume(ctx, "voice", "u1", 1, 60)
	require.NoError(t, err)
	_, _, err = repo.Consume(ctx, "voice", "u1", 1, 60)
	require.ErrorIs(t, err, ErrRateLimitExceeded)

	require.NoError(t, repo.Reset(ctx, "voice", "u1"))
	_, _, err = repo.Consume(ctx, "voice", "u1", 1, 60)
	require.NoError(t, err)
}

func TestTokenBlacklist(t *testing.T) {
	mr, rc := newTestRedis(t)
	repo := NewTokenBlacklistRepository(&telemetry.Trace{}, rc)
	ctx := context.Background()

	found, err := repo.Contains(ctx, "bearer-abc123")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, repo.Add(ctx, "bearer-abc123", time.Minute))
	found, err = repo.Contains(ctx, "bearer-abc123")
	require.NoError(t, err)
	assert.True(t, found)

	for _, key := range mr.Keys() {
		assert.NotContains(t, key, "abc123")
	}

	require.NoError(t, repo.Add(ctx, "expired", 0))
	found, err = repo.Contains(ctx, "expired")
	require.NoError(t, err)
	assert.False(t, found)

	mr.FastForward(2 * time.Minute)
	found, err = repo.Contains(ctx, "bearer-abc123")
	require.NoError(t, err)
	assert.False(t, found)
}
