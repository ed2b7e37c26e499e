package kioskAuth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	errOTPRequestRateLimited = errors.New("otp request window exhausted")
	errOTPVerifyRateLimited  = errors.New("otp verify window exhausted")
	errOTPLimiterUnavailable = errors.New("otp limiter unavailable")
)

// otpLimiter throttles issuance and verification per (IP, identifier) pair
// with independent fixed windows. Keying on the pair means one hostile IP
// cannot burn a citizen's budget from elsewhere, and one IP cannot spray
// codes across many identifiers unthrottled.
type otpLimiter struct {
	redis  *redis.Client
	config RateLimitConfig
}

func newOTPLimiter(redisClient *redis.Client, cfg RateLimitConfig) *otpLimiter {
	return &otpLimiter{
		redis:  redisClient,
		config: cfg,
	}
}

func (l *otpLimiter) CheckRequest(ctx context.Context, ip, identifier string, loginType LoginType) error {
	if !l.config.Enabled {
		return nil
	}

	return l.enforceFixedWindow(
		ctx,
		otpRequestKey(ip, identifier, loginType),
		l.config.RequestMax,
		l.config.RequestWindow,
		errOTPRequestRateLimited,
	)
}

func (l *otpLimiter) CheckVerify(ctx context.Context, ip, identifier string, loginType LoginType) error {
	if !l.config.Enabled {
		return nil
	}

	return l.enforceFixedWindow(
		ctx,
		otpVerifyKey(ip, identifier, loginType),
		l.config.VerifyMax,
		l.config.VerifyWindow,
		errOTPVerifyRateLimited,
	)
}

func (l *otpLimiter) enforceFixedWindow(ctx context.Context, key string, max int, window time.Duration, limitErr error) error {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", errOTPLimiterUnavailable, err)
	}

	if count == 1 {
		if err := l.redis.Expire(ctx, key, window).Err(); err != nil {
			return fmt.Errorf("%w: %v", errOTPLimiterUnavailable, err)
		}
	}

	if count > int64(max) {
		return limitErr
	}

	return nil
}

func otpRequestKey(ip, identifier string, loginType LoginType) string {
	return "kor:" + ip + ":" + string(loginType) + ":" + identifier
}

func otpVerifyKey(ip, identifier string, loginType LoginType) string {
	return "kov:" + ip + ":" + string(loginType) + ":" + identifier
}
