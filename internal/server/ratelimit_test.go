package server

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *redis.Client {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestNewRateLimiterRejectsBadConfig(t *testing.T) {
	client := setupTestRedis(t)
	_, err := NewRateLimiter(client, 0, time.Minute)
	assert.Error(t, err)
	_, err = NewRateLimiter(client, 10, 0)
	assert.Error(t, err)
}

func TestRateLimiterAllowsUpToLimit(t *testing.T) {
	client := setupTestRedis(t)
	limiter, err := NewRateLimiter(client, 3, time.Minute)
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		info, err := limiter.Allow(ctx, "client-a")
		require.NoError(t, err)
		assert.True(t, info.Allowed)
	}

	info, err := limiter.Allow(ctx, "client-a")
	require.NoError(t, err)
	assert.False(t, info.Allowed)
	assert.Equal(t, 0, info.Remaining)
}

func TestRateLimiterKeysAreIndependent(t *testing.T) {
	client := setupTestRedis(t)
	limiter, err := NewRateLimiter(client, 1, time.Minute)
	require.NoError(t, err)

	ctx := context.Background()
	infoA, err := limiter.Allow(ctx, "client-a")
	require.NoError(t, err)
	assert.True(t, infoA.Allowed)

	infoB, err := limiter.Allow(ctx, "client-b")
	require.NoError(t, err)
	assert.True(t, infoB.Allowed)
}
