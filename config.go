package kioskAuth

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config defines a public type used by kioskAuth APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	JWT       JWTConfig
	OTP       OTPConfig
	RateLimit RateLimitConfig
	Notify    NotifyConfig
	Account   AccountConfig
	Audit     AuditConfig
	Metrics   MetricsConfig
	Security  SecurityConfig
}

/*
====================================
JWT CONFIG
====================================
*/

// JWTConfig defines a public type used by kioskAuth APIs.
//
// JWTConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type JWTConfig struct {
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	SigningMethod string // "hs256" (default), "ed25519" optional
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Leeway        time.Duration
}

/*
====================================
OTP CONFIG
====================================
*/

// OTPConfig defines a public type used by kioskAuth APIs.
//
// OTPConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type OTPConfig struct {
	ExpiryMinutes int
	MaxAttempts   int
}

/*
====================================
RATE LIMIT CONFIG
====================================
*/

// RateLimitConfig defines a public type used by kioskAuth APIs.
//
// RateLimitConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RateLimitConfig struct {
	Enabled       bool
	RequestMax    int
	RequestWindow time.Duration
	VerifyMax     int
	VerifyWindow  time.Duration
	GeneralMax    int
	GeneralWindow time.Duration
}

/*
====================================
NOTIFY CONFIG
====================================
*/

// NotifyConfig defines a public type used by kioskAuth APIs.
//
// NotifyConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type NotifyConfig struct {
	WebhookURL string
	Timeout    time.Duration

	// EchoCodeInResult copies the plaintext code into OTPResult.DebugCode.
	// Development convenience only; Validate rejects it in production mode.
	EchoCodeInResult bool
}

// AccountConfig defines a public type used by kioskAuth APIs.
//
// AccountConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AccountConfig struct {
	DefaultRole      string
	ProvisionMissing bool
}

// AuditConfig defines a public type used by kioskAuth APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by kioskAuth APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
SECURITY CONFIG
====================================
*/

// SecurityConfig defines a public type used by kioskAuth APIs.
//
// SecurityConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SecurityConfig struct {
	ProductionMode bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

func defaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL:     1 * time.Hour,
			RefreshTTL:    7 * 24 * time.Hour,
			SigningMethod: "hs256",
		},
		OTP: OTPConfig{
			ExpiryMinutes: 10,
			MaxAttempts:   5,
		},
		RateLimit: RateLimitConfig{
			Enabled:       true,
			RequestMax:    5,
			RequestWindow: 10 * time.Minute,
			VerifyMax:     5,
			VerifyWindow:  15 * time.Minute,
			GeneralMax:    100,
			GeneralWindow: 15 * time.Minute,
		},
		Notify: NotifyConfig{
			Timeout:          10 * time.Second,
			EchoCodeInResult: false,
		},
		Account: AccountConfig{
			DefaultRole:      RoleCitizen,
			ProvisionMissing: true,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
		Security: SecurityConfig{
			ProductionMode: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.PrivateKey = cloneBytes(cfg.JWT.PrivateKey)
	out.JWT.PublicKey = cloneBytes(cfg.JWT.PublicKey)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	// JWT
	if c.JWT.AccessTTL <= 0 {
		return errors.New("JWT AccessTTL must be > 0")
	}
	if c.JWT.RefreshTTL <= 0 {
		return errors.New("JWT RefreshTTL must be > 0")
	}
	if c.JWT.RefreshTTL <= c.JWT.AccessTTL {
		return errors.New("JWT RefreshTTL must exceed AccessTTL")
	}

	if c.JWT.SigningMethod != "hs256" && c.JWT.SigningMethod != "ed25519" {
		return errors.New("unsupported JWT signing method")
	}

	if c.JWT.SigningMethod == "hs256" && len(c.JWT.PrivateKey) == 0 {
		return errors.New("hs256 requires PrivateKey")
	}
	if c.JWT.SigningMethod == "ed25519" && len(c.JWT.PrivateKey) == 0 {
		return errors.New("ed25519 requires PrivateKey")
	}
	if c.JWT.SigningMethod == "ed25519" && len(c.JWT.PublicKey) == 0 {
		return errors.New("ed25519 requires PublicKey")
	}

	// OTP
	if c.OTP.ExpiryMinutes <= 0 {
		return errors.New("OTP ExpiryMinutes must be > 0")
	}
	if c.OTP.MaxAttempts <= 0 {
		return errors.New("OTP MaxAttempts must be > 0")
	}

	// Rate limiting
	if c.RateLimit.Enabled {
		if c.RateLimit.RequestMax <= 0 || c.RateLimit.RequestWindow <= 0 {
			return errors.New("RateLimit request window configuration must be > 0")
		}
		if c.RateLimit.VerifyMax <= 0 || c.RateLimit.VerifyWindow <= 0 {
			return errors.New("RateLimit verify window configuration must be > 0")
		}
		if c.RateLimit.GeneralMax <= 0 || c.RateLimit.GeneralWindow <= 0 {
			return errors.New("RateLimit general window configuration must be > 0")
		}
	}

	// Notification
	if c.Notify.Timeout <= 0 {
		return errors.New("Notify Timeout must be > 0")
	}

	// Account
	if c.Account.DefaultRole == "" {
		return errors.New("Account DefaultRole is required")
	}

	// Audit
	if c.Audit.Enabled {
		if c.Audit.BufferSize <= 0 {
			return errors.New("Audit BufferSize must be > 0 when audit is enabled")
		}
	}

	if c.Security.ProductionMode {
		if c.Notify.EchoCodeInResult {
			return errors.New("ProductionMode forbids Notify EchoCodeInResult")
		}
		if !c.RateLimit.Enabled {
			return errors.New("ProductionMode requires rate limiting")
		}
		if c.JWT.SigningMethod == "hs256" && len(c.JWT.PrivateKey) < 32 {
			return errors.New("ProductionMode requires hs256 key length >= 256 bits")
		}
		if c.JWT.AccessTTL > 24*time.Hour {
			return errors.New("ProductionMode requires JWT AccessTTL <= 24h")
		}
		if c.OTP.MaxAttempts > 5 {
			return errors.New("ProductionMode requires OTP MaxAttempts <= 5")
		}
		if c.OTP.ExpiryMinutes > 15 {
			return errors.New("ProductionMode requires OTP ExpiryMinutes <= 15")
		}
	}

	return nil
}

/*
====================================
ENVIRONMENT
====================================
*/

type envConfig struct {
	JWTSecret      string        `env:"KIOSKAUTH_JWT_SECRET"`
	JWTIssuer      string        `env:"KIOSKAUTH_JWT_ISSUER"`
	AccessTTL      time.Duration `env:"KIOSKAUTH_ACCESS_TTL" envDefault:"1h"`
	RefreshTTL     time.Duration `env:"KIOSKAUTH_REFRESH_TTL" envDefault:"168h"`
	OTPExpiry      int           `env:"KIOSKAUTH_OTP_EXPIRY_MINUTES" envDefault:"10"`
	OTPMaxAttempts int           `env:"KIOSKAUTH_OTP_MAX_ATTEMPTS" envDefault:"5"`
	RequestMax     int           `env:"KIOSKAUTH_OTP_REQUEST_MAX" envDefault:"5"`
	RequestWindow  time.Duration `env:"KIOSKAUTH_OTP_REQUEST_WINDOW" envDefault:"10m"`
	VerifyMax      int           `env:"KIOSKAUTH_OTP_VERIFY_MAX" envDefault:"5"`
	VerifyWindow   time.Duration `env:"KIOSKAUTH_OTP_VERIFY_WINDOW" envDefault:"15m"`
	GeneralMax     int           `env:"KIOSKAUTH_GENERAL_MAX" envDefault:"100"`
	GeneralWindow  time.Duration `env:"KIOSKAUTH_GENERAL_WINDOW" envDefault:"15m"`
	WebhookURL     string        `env:"KIOSKAUTH_NOTIFY_WEBHOOK_URL"`
	NotifyTimeout  time.Duration `env:"KIOSKAUTH_NOTIFY_TIMEOUT" envDefault:"10s"`
	AuditBuffer    int           `env:"KIOSKAUTH_AUDIT_BUFFER" envDefault:"1024"`
	ProductionMode bool          `env:"KIOSKAUTH_PRODUCTION" envDefault:"false"`
}

// ConfigFromEnv builds a [Config] from KIOSKAUTH_* environment variables on
// top of the package defaults. The signing secret is the only variable a
// deployment must set; everything else falls back to the defaults above.
func ConfigFromEnv() (Config, error) {
	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return Config{}, err
	}

	cfg := defaultConfig()
	cfg.JWT.PrivateKey = []byte(raw.JWTSecret)
	cfg.JWT.Issuer = raw.JWTIssuer
	cfg.JWT.AccessTTL = raw.AccessTTL
	cfg.JWT.RefreshTTL = raw.RefreshTTL
	cfg.OTP.ExpiryMinutes = raw.OTPExpiry
	cfg.OTP.MaxAttempts = raw.OTPMaxAttempts
	cfg.RateLimit.RequestMax = raw.RequestMax
	cfg.RateLimit.RequestWindow = raw.RequestWindow
	cfg.RateLimit.VerifyMax = raw.VerifyMax
	cfg.RateLimit.VerifyWindow = raw.VerifyWindow
	cfg.RateLimit.GeneralMax = raw.GeneralMax
	cfg.RateLimit.GeneralWindow = raw.GeneralWindow
	cfg.Notify.WebhookURL = raw.WebhookURL
	cfg.Notify.Timeout = raw.NotifyTimeout
	cfg.Audit.BufferSize = raw.AuditBuffer
	cfg.Security.ProductionMode = raw.ProductionMode

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
