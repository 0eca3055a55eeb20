package service

import (
	"context"
	"fmt"
	"time"

	"github.com/vidstream/vidstream-api/pkg/database"
)

// ChannelStatsCache caches channel subscriber counts in Redis in front of the
// Postgres COUNT queries. Cache misses and Redis failures both fall through
// to the database; staleness is bounded by the TTL and writes invalidate
// eagerly.
type ChannelStatsCache struct {
	redis *database.Redis
	ttl   time.Duration
}

// NewChannelStatsCache creates the cache.
func NewChannelStatsCache(redis *database.Redis, ttl time.Duration) *ChannelStatsCache {
	return &ChannelStatsCache{redis: redis, ttl: ttl}
}

// Get returns cached counts for a channel; ok is false on miss or error.
func (c *ChannelStatsCache) Get(ctx context.Context, channelID string) (subscribers, subscribedTo int64, ok bool) {
	vals, err := c.redis.Client.HMGet(ctx, c.key(channelID), "subscribers", "subscribed_to").Result()
	if err != nil || len(vals) != 2 || vals[0] == nil || vals[1] == nil {
		return 0, 0, false
	}

	subscribers, err1 := parseCount(vals[0])
	subscribedTo, err2 := parseCount(vals[1])
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}

	return subscribers, subscribedTo, true
}

// Set stores counts for a channel with the configured TTL. Failures are
// dropped; the cache is advisory.
func (c *ChannelStatsCache) Set(ctx context.Context, channelID string, subscribers, subscribedTo int64) {
	key := c.key(channelID)

	pipe := c.redis.Client.TxPipeline()
	pipe.HSet(ctx, key, "subscribers", subscribers, "subscribed_to", subscribedTo)
	pipe.Expire(ctx, key, c.ttl)
	_, _ = pipe.Exec(ctx)
}

// Invalidate drops the cached counts for a channel.
func (c *ChannelStatsCache) Invalidate(ctx context.Context, channelID string) {
	_ = c.redis.Client.Del(ctx, c.key(channelID)).Err()
}

func (c *ChannelStatsCache) key(channelID string) string {
	return fmt.Sprintf("channelstats:%s", channelID)
}

func parseCount(v any) (int64, error) {
	s, ok := v.(string)
	if !ok {
		return 0, fmt.Errorf("unexpected value type %T", v)
	}

	var n int64
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
		return 0, err
	}
	return n, nil
}
