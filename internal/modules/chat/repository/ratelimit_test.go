package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	limiter := NewRateLimiter(rdb)
	ctx := context.Background()

	ok, err := limiter.Allow(ctx, "s1", "chat", 2*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = limiter.Allow(ctx, "s1", "chat", 2*time.Second)
	require.NoError(t, err)
	assert.False(t, ok, "second call inside the window is limited")

	ok, err = limiter.Allow(ctx, "s2", "chat", 2*time.Second)
	require.NoError(t, err)
	assert.True(t, ok, "other sessions are independent")

	ttl, err := limiter.RetryAfter(ctx, "s1", "chat")
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	mr.FastForward(3 * time.Second)
	ok, err = limiter.Allow(ctx, "s1", "chat", 2*time.Second)
	require.NoError(t, err)
	assert.True(t, ok, "window expired")

	require.NoError(t, limiter.Clear(ctx, "s1", "chat"))
	ok, err = limiter.Allow(ctx, "s1", "chat", 2*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRateLimiter_NilClientAllows(t *testing.T) {
	limiter := NewRateLimiter(nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := limiter.Allow(ctx, "s1", "chat", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ttl, err := limiter.RetryAfter(ctx, "s1", "chat")
	require.NoError(t, err)
	assert.Zero(t, ttl)
}

func TestRateLimiter_RedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mr.Close()

	_, err := NewRateLimiter(rdb).Allow(context.Background(), "s1", "chat", time.Second)
	assert.Error(t, err)
}
