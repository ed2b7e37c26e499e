package test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	kioskAuth "github.com/MrEthical07/kioskAuth"
)

func TestLoginLifecycle(t *testing.T) {
	_, engine := newKioskEngine(t, nil)
	ctx := context.Background()

	code := requestCode(t, engine, "9876543210", kioskAuth.LoginMobile)

	// A wrong guess reports the remaining budget without consuming the
	// challenge.
	_, err := engine.VerifyOTP(ctx, "9876543210", kioskAuth.LoginMobile, wrongCodeFor(code))
	if !errors.Is(err, kioskAuth.ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode, got %v", err)
	}
	var invalid *kioskAuth.InvalidCodeError
	if !errors.As(err, &invalid) || invalid.Remaining != 4 {
		t.Fatalf("expected 4 attempts remaining, got %v", err)
	}
	if !strings.Contains(err.Error(), "4 attempts remaining") {
		t.Fatalf("unexpected message %q", err.Error())
	}

	login, err := engine.VerifyOTP(ctx, "9876543210", kioskAuth.LoginMobile, code)
	if err != nil {
		t.Fatalf("VerifyOTP failed: %v", err)
	}
	if !login.Provisioned {
		t.Fatal("first login should provision the account")
	}
	if login.Account.MobileNumber != "9876543210" || login.Account.Role != kioskAuth.RoleCitizen {
		t.Fatalf("unexpected account: %+v", login.Account)
	}

	res, err := engine.ValidateAccess(ctx, login.AccessToken)
	if err != nil {
		t.Fatalf("ValidateAccess failed: %v", err)
	}
	if res.AccountID != login.Account.AccountID {
		t.Fatalf("token identity mismatch: %+v", res)
	}

	// A verified code is consumed; replay must not mint a second session.
	if _, err := engine.VerifyOTP(ctx, "9876543210", kioskAuth.LoginMobile, code); !errors.Is(err, kioskAuth.ErrOTPInvalidOrExpired) {
		t.Fatalf("expected consumed challenge, got %v", err)
	}
}

func TestReissueSupersedesPriorCode(t *testing.T) {
	_, engine := newKioskEngine(t, nil)
	ctx := context.Background()

	first := requestCode(t, engine, "123456789012", kioskAuth.LoginAadhar)
	second := requestCode(t, engine, "123456789012", kioskAuth.LoginAadhar)

	if first != second {
		if _, err := engine.VerifyOTP(ctx, "123456789012", kioskAuth.LoginAadhar, first); !errors.Is(err, kioskAuth.ErrInvalidCode) {
			t.Fatalf("superseded code should read as a plain mismatch, got %v", err)
		}
	}

	if _, err := engine.VerifyOTP(ctx, "123456789012", kioskAuth.LoginAadhar, second); err != nil {
		t.Fatalf("current code should verify: %v", err)
	}
}

func TestLockoutPersistsUntilReissue(t *testing.T) {
	_, engine := newKioskEngine(t, func(cfg *kioskAuth.Config) {
		// Keep the verify limiter out of the way so the test exercises
		// the challenge lock itself.
		cfg.RateLimit.VerifyMax = 50
	})
	ctx := context.Background()

	code := requestCode(t, engine, "con-77", kioskAuth.LoginConsumerID)
	wrong := wrongCodeFor(code)

	for i := 0; i < 5; i++ {
		if _, err := engine.VerifyOTP(ctx, "con-77", kioskAuth.LoginConsumerID, wrong); !errors.Is(err, kioskAuth.ErrInvalidCode) {
			t.Fatalf("attempt %d: expected ErrInvalidCode, got %v", i+1, err)
		}
	}

	if _, err := engine.VerifyOTP(ctx, "con-77", kioskAuth.LoginConsumerID, wrong); !errors.Is(err, kioskAuth.ErrOTPMaxAttempts) {
		t.Fatalf("expected ErrOTPMaxAttempts, got %v", err)
	}

	// The lock holds even for the correct code.
	if _, err := engine.VerifyOTP(ctx, "con-77", kioskAuth.LoginConsumerID, code); !errors.Is(err, kioskAuth.ErrOTPLocked) {
		t.Fatalf("expected ErrOTPLocked, got %v", err)
	}

	// Only a fresh issuance clears it.
	fresh := requestCode(t, engine, "con-77", kioskAuth.LoginConsumerID)
	if _, err := engine.VerifyOTP(ctx, "con-77", kioskAuth.LoginConsumerID, fresh); err != nil {
		t.Fatalf("fresh code after reissue should verify: %v", err)
	}
}

func TestRefreshRotationAndReuse(t *testing.T) {
	_, engine := newKioskEngine(t, nil)
	ctx := context.Background()

	code := requestCode(t, engine, "9876543210", kioskAuth.LoginMobile)
	login, err := engine.VerifyOTP(ctx, "9876543210", kioskAuth.LoginMobile, code)
	if err != nil {
		t.Fatalf("VerifyOTP failed: %v", err)
	}

	pair, err := engine.Refresh(ctx, login.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if pair.RefreshToken == login.RefreshToken {
		t.Fatal("refresh must rotate the token")
	}

	// Presenting the rotated-out token is treated as theft and revokes the
	// live one too.
	if _, err := engine.Refresh(ctx, login.RefreshToken); !errors.Is(err, kioskAuth.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated on reuse, got %v", err)
	}
	if _, err := engine.Refresh(ctx, pair.RefreshToken); !errors.Is(err, kioskAuth.ErrUnauthenticated) {
		t.Fatalf("expected revoked live token after reuse, got %v", err)
	}
}

func TestRequestBudgetRecoversAfterWindow(t *testing.T) {
	mr, engine := newKioskEngine(t, nil)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := engine.RequestOTP(ctx, "9876543210", kioskAuth.LoginMobile); err != nil {
			t.Fatalf("request %d failed: %v", i+1, err)
		}
	}

	if _, err := engine.RequestOTP(ctx, "9876543210", kioskAuth.LoginMobile); !errors.Is(err, kioskAuth.ErrOTPRequestRateLimited) {
		t.Fatalf("expected ErrOTPRequestRateLimited, got %v", err)
	}

	mr.FastForward(11 * time.Minute)

	if _, err := engine.RequestOTP(ctx, "9876543210", kioskAuth.LoginMobile); err != nil {
		t.Fatalf("post-window request failed: %v", err)
	}
}

func TestProfileSurfaceThroughPublicAPI(t *testing.T) {
	_, engine := newKioskEngine(t, nil)
	ctx := context.Background()

	code := requestCode(t, engine, "9876543210", kioskAuth.LoginMobile)
	login, err := engine.VerifyOTP(ctx, "9876543210", kioskAuth.LoginMobile, code)
	if err != nil {
		t.Fatalf("VerifyOTP failed: %v", err)
	}

	updated, err := engine.UpdateProfile(ctx, login.Account.AccountID, kioskAuth.ProfileInput{
		FullName: "Asha Rao",
		Email:    "asha@example.com",
	})
	if err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}
	if updated.FullName != "Asha Rao" {
		t.Fatalf("unexpected profile: %+v", updated)
	}

	joined, err := engine.Profile(ctx, login.Account.AccountID)
	if err != nil {
		t.Fatalf("Profile failed: %v", err)
	}
	if joined.Account.AccountID != login.Account.AccountID || joined.Profile.Email != "asha@example.com" {
		t.Fatalf("unexpected join: %+v", joined)
	}
}
