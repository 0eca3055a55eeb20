package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vidstream/vidstream-api/pkg/database"
)

// ErrRateLimited is returned when the caller exhausted the window.
var ErrRateLimited = fmt.Errorf("rate limit exceeded")

// RateLimiter implements a sliding-window-log limiter on Redis, applied to
// the credential endpoints (register, login) to slow brute forcing.
type RateLimiter struct {
	redis *database.Redis
}

// NewRateLimiter creates a rate limiter.
func NewRateLimiter(redis *database.Redis) *RateLimiter {
	return &RateLimiter{redis: redis}
}

// Allow records the request and reports whether it fits the limit for the
// window. When the limit is exceeded it returns ErrRateLimited wrapped with
// the time until the oldest entry leaves the window.
func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) error {
	now := time.Now()
	redisKey := fmt.Sprintf("ratelimit:%s", key)

	// Drop entries that slid out of the window.
	windowStart := now.Add(-window)
	if err := r.redis.Client.ZRemRangeByScore(ctx, redisKey, "0", fmt.Sprintf("%d", windowStart.Unix())).Err(); err != nil {
		return fmt.Errorf("failed to clean old entries: %w", err)
	}

	count, err := r.redis.Client.ZCard(ctx, redisKey).Result()
	if err != nil {
		return fmt.Errorf("failed to count entries: %w", err)
	}

	if count >= int64(limit) {
		oldest, err := r.redis.Client.ZRangeWithScores(ctx, redisKey, 0, 0).Result()
		if err == nil && len(oldest) > 0 {
			retryAfter := window - time.Since(time.Unix(int64(oldest[0].Score), 0))
			return fmt.Errorf("%w, try again in %v", ErrRateLimited, retryAfter.Round(time.Second))
		}
		return ErrRateLimited
	}

	member := fmt.Sprintf("%d", now.UnixNano())
	if err := r.redis.Client.ZAdd(ctx, redisKey, redis.Z{
		Score:  float64(now.Unix()),
		Member: member,
	}).Err(); err != nil {
		return fmt.Errorf("failed to add entry: %w", err)
	}

	// Key expiry only needs to outlive the window.
	_ = r.redis.Client.Expire(ctx, redisKey, window+time.Minute).Err()

	return nil
}

// Remaining returns the number of requests left in the current window.
func (r *RateLimiter) Remaining(ctx context.Context, key string, limit int, window time.Duration) (int, error) {
	redisKey := fmt.Sprintf("ratelimit:%s", key)

	windowStart := time.Now().Add(-window)
	if err := r.redis.Client.ZRemRangeByScore(ctx, redisKey, "0", fmt.Sprintf("%d", windowStart.Unix())).Err(); err != nil {
		return 0, fmt.Errorf("failed to clean old entries: %w", err)
	}

	count, err := r.redis.Client.ZCard(ctx, redisKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}

	remaining := limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return remaining, nil
}
