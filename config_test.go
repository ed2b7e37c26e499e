package kioskAuth

import (
	"testing"
	"time"
)

func validTestConfig() Config {
	cfg := defaultConfig()
	cfg.JWT.PrivateKey = []byte("test-secret-key-at-least-32-bytes!")
	return cfg
}

func TestDefaultConfigValidates(t *testing.T) {
	cfg := validTestConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero access ttl", func(c *Config) { c.JWT.AccessTTL = 0 }},
		{"refresh not exceeding access", func(c *Config) { c.JWT.RefreshTTL = c.JWT.AccessTTL }},
		{"unknown signing method", func(c *Config) { c.JWT.SigningMethod = "none" }},
		{"hs256 without key", func(c *Config) { c.JWT.PrivateKey = nil }},
		{"zero otp expiry", func(c *Config) { c.OTP.ExpiryMinutes = 0 }},
		{"zero max attempts", func(c *Config) { c.OTP.MaxAttempts = 0 }},
		{"bad request window", func(c *Config) { c.RateLimit.RequestMax = 0 }},
		{"bad verify window", func(c *Config) { c.RateLimit.VerifyWindow = 0 }},
		{"zero notify timeout", func(c *Config) { c.Notify.Timeout = 0 }},
		{"missing default role", func(c *Config) { c.Account.DefaultRole = "" }},
		{"audit enabled without buffer", func(c *Config) { c.Audit.Enabled = true; c.Audit.BufferSize = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validTestConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestProductionModeHardening(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"echo code forbidden", func(c *Config) { c.Notify.EchoCodeInResult = true }},
		{"rate limiting required", func(c *Config) { c.RateLimit.Enabled = false }},
		{"short hs256 key", func(c *Config) { c.JWT.PrivateKey = []byte("short") }},
		{"long access ttl", func(c *Config) { c.JWT.AccessTTL = 25 * time.Hour; c.JWT.RefreshTTL = 30 * 24 * time.Hour }},
		{"too many attempts", func(c *Config) { c.OTP.MaxAttempts = 10 }},
		{"long otp expiry", func(c *Config) { c.OTP.ExpiryMinutes = 30 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validTestConfig()
			cfg.Security.ProductionMode = true
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected production hardening error")
			}
		})
	}

	cfg := validTestConfig()
	cfg.Security.ProductionMode = true
	if err := cfg.Validate(); err != nil {
		t.Fatalf("hardened defaults should validate: %v", err)
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("KIOSKAUTH_JWT_SECRET", "env-secret-key-at-least-32-bytes-xx")
	t.Setenv("KIOSKAUTH_JWT_ISSUER", "kiosk-platform")
	t.Setenv("KIOSKAUTH_OTP_EXPIRY_MINUTES", "5")
	t.Setenv("KIOSKAUTH_OTP_REQUEST_MAX", "3")

	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv failed: %v", err)
	}

	if string(cfg.JWT.PrivateKey) != "env-secret-key-at-least-32-bytes-xx" {
		t.Fatal("expected secret from environment")
	}
	if cfg.JWT.Issuer != "kiosk-platform" {
		t.Fatalf("unexpected issuer %q", cfg.JWT.Issuer)
	}
	if cfg.OTP.ExpiryMinutes != 5 {
		t.Fatalf("unexpected expiry %d", cfg.OTP.ExpiryMinutes)
	}
	if cfg.RateLimit.RequestMax != 3 {
		t.Fatalf("unexpected request max %d", cfg.RateLimit.RequestMax)
	}
	// Untouched values keep their defaults.
	if cfg.OTP.MaxAttempts != 5 {
		t.Fatalf("unexpected max attempts %d", cfg.OTP.MaxAttempts)
	}
}

func TestConfigFromEnvRejectsMissingSecret(t *testing.T) {
	t.Setenv("KIOSKAUTH_JWT_SECRET", "")

	if _, err := ConfigFromEnv(); err == nil {
		t.Fatal("expected error without signing secret")
	}
}

func TestCloneConfigCopiesKeys(t *testing.T) {
	cfg := validTestConfig()
	clone := cloneConfig(cfg)

	clone.JWT.PrivateKey[0] = 'X'
	if cfg.JWT.PrivateKey[0] == 'X' {
		t.Fatal("expected key bytes to be copied, not shared")
	}
}
