package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const rateLimitKey = "campussync:rate_limit:session:%s:%s"

// RateLimiter allows one action per session per window.
type RateLimiter interface {
	Allow(ctx context.Context, sessionID, action string, window time.Duration) (bool, error)
	RetryAfter(ctx context.Context, sessionID, action string) (time.Duration, error)
	Clear(ctx context.Context, sessionID, action string) error
}

type rateLimiter struct {
	rdb *redis.Client
}

// NewRateLimiter returns a limiter that allows everything when rdb is nil.
func NewRateLimiter(rdb *redis.Client) RateLimiter {
	return &rateLimiter{rdb: rdb}
}

func key(sessionID, action string) string {
	return fmt.Sprintf(rateLimitKey, sessionID, action)
}

func (r *rateLimiter) Allow(ctx context.Context, sessionID, action string, window time.Duration) (bool, error) {
	if r.rdb == nil || window <= 0 {
		return true, nil
	}

	wasSet, err := r.rdb.SetNX(ctx, key(sessionID, action), "locked", window).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit in redis: %w", err)
	}
	return wasSet, nil
}

func (r *rateLimiter) RetryAfter(ctx context.Context, sessionID, action string) (time.Duration, error) {
	if r.rdb == nil {
		return 0, nil
	}
	ttl, err := r.rdb.TTL(ctx, key(sessionID, action)).Result()
	if err != nil {
		return 0, err
	}
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}

func (r *rateLimiter) Clear(ctx context.Context, sessionID, action string) error {
	if r.rdb == nil {
		return nil
	}
	return r.rdb.Del(ctx, key(sessionID, action)).Err()
}
