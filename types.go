package kioskAuth

import (
	"context"
	"time"
)

// LoginType identifies which registered identifier a citizen is logging in
// with: mobile number, Aadhar number, or consumer ID.
type LoginType string

const (
	// LoginMobile is an exported constant or variable used by the kiosk authentication engine.
	LoginMobile LoginType = "M"
	// LoginAadhar is an exported constant or variable used by the kiosk authentication engine.
	LoginAadhar LoginType = "A"
	// LoginConsumerID is an exported constant or variable used by the kiosk authentication engine.
	LoginConsumerID LoginType = "C"
)

const (
	// RoleCitizen is an exported constant or variable used by the kiosk authentication engine.
	RoleCitizen = "citizen"
	// RoleOperator is an exported constant or variable used by the kiosk authentication engine.
	RoleOperator = "operator"
	// RoleAdmin is an exported constant or variable used by the kiosk authentication engine.
	RoleAdmin = "admin"
)

// Account is the account record exchanged with [AccountProvider]. A record
// carries up to three login identifiers; PrimaryLoginType names the one the
// account was provisioned through.
type Account struct {
	AccountID        string
	MobileNumber     string
	AadharNumber     string
	ConsumerID       string
	PrimaryLoginType LoginType
	Role             string
	IsActive         bool

	// CurrentRefreshToken is the single valid refresh token for the
	// account, or empty when logged out. Providers may leave it blank on
	// lookups that do not need it.
	CurrentRefreshToken string

	LastLoginAt time.Time
}

// CreateAccountInput is the input for [AccountProvider.CreateAccount].
type CreateAccountInput struct {
	MobileNumber     string
	AadharNumber     string
	ConsumerID       string
	PrimaryLoginType LoginType
	Role             string
	IsActive         bool
}

// AccountProvider is the primary interface that callers must implement to
// integrate kioskAuth with their account database. It covers identifier
// lookup, provisioning, login bookkeeping, and refresh-token storage.
//
// RotateRefreshToken must be an atomic compare-and-swap: replace the stored
// token with next only if it still equals current, returning
// [ErrRefreshTokenMismatch] otherwise. Concurrent refreshes race on this
// swap and exactly one wins.
type AccountProvider interface {
	GetAccountByIdentifier(ctx context.Context, identifier string, loginType LoginType) (Account, error)
	GetAccountByID(ctx context.Context, accountID string) (Account, error)
	CreateAccount(ctx context.Context, input CreateAccountInput) (Account, error)
	DeleteAccount(ctx context.Context, accountID string) error
	UpdateLastLogin(ctx context.Context, accountID string, at time.Time) error
	SetRefreshToken(ctx context.Context, accountID, token string) error
	RotateRefreshToken(ctx context.Context, accountID, current, next string) error
	ClearRefreshToken(ctx context.Context, accountID string) error
}

// Profile is the citizen profile record exchanged with [ProfileProvider].
// All fields beyond AccountID are optional free text maintained by the
// platform's profile service.
type Profile struct {
	AccountID        string
	FullName         string
	Email            string
	DateOfBirth      string
	Gender           string
	AlternatePhone   string
	Address          string
	Occupation       string
	EmergencyContact string
}

// ProfileInput is the input for [ProfileProvider.CreateProfile] and
// [ProfileProvider.UpdateProfile].
type ProfileInput struct {
	FullName         string
	Email            string
	DateOfBirth      string
	Gender           string
	AlternatePhone   string
	Address          string
	Occupation       string
	EmergencyContact string
}

// ProfileProvider stores the citizen profile joined to each account. The
// engine reads it for notification addresses during OTP issuance and for
// the profile surface; it writes an empty profile during provisioning.
type ProfileProvider interface {
	CreateProfile(ctx context.Context, accountID string, input ProfileInput) error
	GetProfile(ctx context.Context, accountID string) (Profile, error)
	UpdateProfile(ctx context.Context, accountID string, input ProfileInput) (Profile, error)
}

// OTPResult is returned by [Engine.RequestOTP].
type OTPResult struct {
	// ExpiresInMinutes echoes the configured challenge lifetime so kiosks
	// can display a countdown.
	ExpiresInMinutes int

	// Notified reports whether a delivery attempt succeeded. A citizen
	// without a notification address on file yields false without error.
	Notified bool

	// DebugCode carries the plaintext code when
	// [NotifyConfig.EchoCodeInResult] is set. Development only.
	DebugCode string
}

// LoginResult is returned by [Engine.VerifyOTP] on success. It carries the
// resolved (or freshly provisioned) account and a new token pair.
type LoginResult struct {
	Account      Account
	AccessToken  string
	RefreshToken string

	// Provisioned reports whether this login created the account.
	Provisioned bool
}

// TokenPair is returned by [Engine.Refresh].
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthResult is returned by [Engine.ValidateAccess]. It contains the
// authenticated account's ID, registered identifiers, and role as embedded
// in the access token.
type AuthResult struct {
	AccountID    string
	MobileNumber string
	AadharNumber string
	ConsumerID   string
	Role         string
}

// ProfileResult is returned by [Engine.Profile]: the account summary joined
// with its profile record.
type ProfileResult struct {
	Account Account
	Profile Profile
}
