package kioskAuth

import (
	"context"
	"errors"
	"testing"
)

func TestProfileReturnsAccountAndProfile(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	accounts := newMockAccountProvider()
	profiles := newMockProfileProvider()
	accounts.put(Account{AccountID: "a1", MobileNumber: "9876543210", Role: RoleCitizen, IsActive: true})
	profiles.profiles["a1"] = Profile{AccountID: "a1", FullName: "Asha", Email: "asha@example.com"}

	engine := newTestEngine(t, rdb, accounts, profiles)

	result, err := engine.Profile(ctx, "a1")
	if err != nil {
		t.Fatalf("Profile failed: %v", err)
	}
	if result.Account.MobileNumber != "9876543210" {
		t.Fatalf("unexpected account: %+v", result.Account)
	}
	if result.Profile.FullName != "Asha" {
		t.Fatalf("unexpected profile: %+v", result.Profile)
	}
}

func TestProfileMissingAccount(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	engine := newTestEngine(t, rdb, newMockAccountProvider(), newMockProfileProvider())

	if _, err := engine.Profile(ctx, "missing"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
	if _, err := engine.Profile(ctx, ""); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound for empty id, got %v", err)
	}
}

func TestProfileMissingProfileRecord(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	accounts := newMockAccountProvider()
	accounts.put(Account{AccountID: "a1", MobileNumber: "9876543210", IsActive: true})

	engine := newTestEngine(t, rdb, accounts, newMockProfileProvider())

	if _, err := engine.Profile(ctx, "a1"); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	accounts := newMockAccountProvider()
	profiles := newMockProfileProvider()
	accounts.put(Account{AccountID: "a1", MobileNumber: "9876543210", IsActive: true})
	profiles.profiles["a1"] = Profile{AccountID: "a1"}

	engine := newTestEngine(t, rdb, accounts, profiles)

	updated, err := engine.UpdateProfile(ctx, "a1", ProfileInput{
		FullName: "Asha Rao",
		Email:    "asha@example.com",
		Address:  "12 Lake Road",
	})
	if err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}
	if updated.FullName != "Asha Rao" || updated.Address != "12 Lake Road" {
		t.Fatalf("unexpected profile: %+v", updated)
	}

	if engine.metrics.Value(MetricProfileUpdated) != 1 {
		t.Fatal("expected profile update metric")
	}

	stored, err := profiles.GetProfile(ctx, "a1")
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if stored.Email != "asha@example.com" {
		t.Fatalf("unexpected stored profile: %+v", stored)
	}
}

func TestUpdateProfileUnknownAccount(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	engine := newTestEngine(t, rdb, newMockAccountProvider(), newMockProfileProvider())

	if _, err := engine.UpdateProfile(ctx, "missing", ProfileInput{FullName: "X"}); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestProvisioningDisabledRejectsUnknownIdentifier(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	engine := newTestEngine(t, rdb, newMockAccountProvider(), newMockProfileProvider())
	engine.config.Account.ProvisionMissing = false

	issued, err := engine.RequestOTP(ctx, "9876543210", LoginMobile)
	if err != nil {
		t.Fatalf("RequestOTP failed: %v", err)
	}

	if _, err := engine.VerifyOTP(ctx, "9876543210", LoginMobile, issued.DebugCode); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestProvisioningRaceFallsBackToWinner(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	accounts := newMockAccountProvider()
	profiles := newMockProfileProvider()
	engine := newTestEngine(t, rdb, accounts, profiles)

	// Simulate losing the provisioning race: the account appears between
	// the failed lookup and CreateAccount.
	winner := Account{AccountID: "winner", MobileNumber: "9876543210", Role: RoleCitizen, IsActive: true}

	account, provisioned, err := engine.resolveOrProvision(ctx, "9876543210", LoginMobile)
	if err != nil {
		t.Fatalf("resolveOrProvision failed: %v", err)
	}
	if !provisioned {
		t.Fatal("expected provisioning on empty store")
	}
	_ = account

	// Now force the duplicate branch directly.
	accounts.put(winner)
	resolved, err := engine.provisionAccount(ctx, "9876543210", LoginMobile)
	if err != nil {
		t.Fatalf("provisionAccount failed: %v", err)
	}
	if resolved.AccountID == "" {
		t.Fatal("expected resolved account")
	}
}
