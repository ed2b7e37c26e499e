package kioskAuth

import (
	"context"
	"errors"
	"testing"
	"time"
)

func testRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Enabled:       true,
		RequestMax:    3,
		RequestWindow: 10 * time.Minute,
		VerifyMax:     2,
		VerifyWindow:  15 * time.Minute,
	}
}

func TestOTPLimiterRequestWindow(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	limiter := newOTPLimiter(rdb, testRateLimitConfig())

	for i := 0; i < 3; i++ {
		if err := limiter.CheckRequest(ctx, "1.2.3.4", "9876543210", LoginMobile); err != nil {
			t.Fatalf("request %d failed: %v", i+1, err)
		}
	}

	if err := limiter.CheckRequest(ctx, "1.2.3.4", "9876543210", LoginMobile); !errors.Is(err, errOTPRequestRateLimited) {
		t.Fatalf("expected errOTPRequestRateLimited, got %v", err)
	}

	// Budget recovers after the window.
	mr.FastForward(11 * time.Minute)
	if err := limiter.CheckRequest(ctx, "1.2.3.4", "9876543210", LoginMobile); err != nil {
		t.Fatalf("expected recovery after window, got %v", err)
	}
}

func TestOTPLimiterKeysArePerIPAndIdentifier(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	limiter := newOTPLimiter(rdb, testRateLimitConfig())

	for i := 0; i < 3; i++ {
		if err := limiter.CheckRequest(ctx, "1.2.3.4", "9876543210", LoginMobile); err != nil {
			t.Fatalf("request %d failed: %v", i+1, err)
		}
	}

	// A different IP or identifier carries its own budget.
	if err := limiter.CheckRequest(ctx, "5.6.7.8", "9876543210", LoginMobile); err != nil {
		t.Fatalf("different IP should not be throttled: %v", err)
	}
	if err := limiter.CheckRequest(ctx, "1.2.3.4", "9876543211", LoginMobile); err != nil {
		t.Fatalf("different identifier should not be throttled: %v", err)
	}

	// Request and verify budgets are independent.
	if err := limiter.CheckVerify(ctx, "1.2.3.4", "9876543210", LoginMobile); err != nil {
		t.Fatalf("verify budget should be untouched: %v", err)
	}
}

func TestOTPLimiterVerifyWindow(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	limiter := newOTPLimiter(rdb, testRateLimitConfig())

	for i := 0; i < 2; i++ {
		if err := limiter.CheckVerify(ctx, "1.2.3.4", "9876543210", LoginMobile); err != nil {
			t.Fatalf("verify %d failed: %v", i+1, err)
		}
	}

	if err := limiter.CheckVerify(ctx, "1.2.3.4", "9876543210", LoginMobile); !errors.Is(err, errOTPVerifyRateLimited) {
		t.Fatalf("expected errOTPVerifyRateLimited, got %v", err)
	}
}

func TestOTPLimiterDisabled(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	limiter := newOTPLimiter(rdb, RateLimitConfig{Enabled: false})

	for i := 0; i < 100; i++ {
		if err := limiter.CheckRequest(ctx, "1.2.3.4", "9876543210", LoginMobile); err != nil {
			t.Fatalf("disabled limiter must not throttle: %v", err)
		}
	}
}
