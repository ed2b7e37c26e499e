package test

import (
	"context"
	"testing"

	kioskAuth "github.com/MrEthical07/kioskAuth"
	"github.com/MrEthical07/kioskAuth/accountstore"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// newKioskEngine builds a full engine against miniredis and the bundled
// Redis account store, with the debug code echo turned on so tests can read
// the issued code. mutate, when non-nil, adjusts the config before Build.
func newKioskEngine(t *testing.T, mutate func(*kioskAuth.Config)) (*miniredis.Miniredis, *kioskAuth.Engine) {
	t.Helper()
	t.Setenv("KIOSKAUTH_JWT_SECRET", "lifecycle-test-secret-32-bytes!!!!!")

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	store := accountstore.New(rdb)

	cfg, err := kioskAuth.ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv failed: %v", err)
	}
	cfg.Notify.EchoCodeInResult = true
	if mutate != nil {
		mutate(&cfg)
	}

	engine, err := kioskAuth.New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithAccountProvider(store).
		WithProfileProvider(store).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	return mr, engine
}

// requestCode issues a challenge and returns the echoed plaintext code.
func requestCode(t *testing.T, engine *kioskAuth.Engine, identifier string, loginType kioskAuth.LoginType) string {
	t.Helper()

	issued, err := engine.RequestOTP(context.Background(), identifier, loginType)
	if err != nil {
		t.Fatalf("RequestOTP failed: %v", err)
	}
	if issued.DebugCode == "" {
		t.Fatal("expected echoed debug code")
	}
	return issued.DebugCode
}

// wrongCodeFor returns a well-formed six digit code that differs from code.
func wrongCodeFor(code string) string {
	if code == "123456" {
		return "654321"
	}
	return "123456"
}
