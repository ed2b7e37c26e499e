package rate

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds rate limiter tuning parameters.
type Config struct {
	Enabled     bool
	MaxRequests int
	Window      time.Duration
}

// Limiter enforces the general per-IP request budget shared by every
// authenticated endpoint, using Redis counters.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a rate [Limiter] backed by the given Redis client.
func New(redisClient redis.UniversalClient, cfg Config) *Limiter {
	return &Limiter{
		redis:  redisClient,
		config: cfg,
	}
}

// Check consumes one unit of the IP's budget for the current window.
// Returns [ErrRateLimited] once the budget is exhausted. Callers without a
// resolvable IP are not throttled.
func (l *Limiter) Check(ctx context.Context, ip string) error {
	if !l.config.Enabled || ip == "" {
		return nil
	}

	count, err := l.incrementWithTTL(ctx, generalKey(ip), l.config.Window)
	if err != nil {
		return err
	}
	if count > int64(l.config.MaxRequests) {
		return ErrRateLimited
	}

	return nil
}

// Remaining reports the unused budget for an IP in the current window.
// Missing keys return the full budget and do not reveal prior activity.
func (l *Limiter) Remaining(ctx context.Context, ip string) (int, error) {
	count, err := l.redis.Get(ctx, generalKey(ip)).Int64()
	if err != nil {
		if err == redis.Nil {
			return l.config.MaxRequests, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	remaining := int64(l.config.MaxRequests) - count
	if remaining < 0 {
		remaining = 0
	}
	return int(remaining), nil
}

func (l *Limiter) incrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// Fixed-window semantics: set TTL only for the first hit in the window.
	if count == 1 {
		if err := l.redis.Expire(ctx, key, ttl).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	return count, nil
}

func generalKey(ip string) string {
	return "kg:" + ip
}
