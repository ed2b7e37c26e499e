package kioskAuth

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidLoginType is an exported constant or variable used by the kiosk authentication engine.
	ErrInvalidLoginType = errors.New("invalid login type")
	// ErrInvalidIdentifier is an exported constant or variable used by the kiosk authentication engine.
	ErrInvalidIdentifier = errors.New("invalid identifier for login type")
	// ErrMalformedCode is an exported constant or variable used by the kiosk authentication engine.
	ErrMalformedCode = errors.New("malformed otp code")
	// ErrOTPInvalidOrExpired is an exported constant or variable used by the kiosk authentication engine.
	ErrOTPInvalidOrExpired = errors.New("otp invalid or expired")
	// ErrOTPExpired is an exported constant or variable used by the kiosk authentication engine.
	ErrOTPExpired = errors.New("otp expired")
	// ErrOTPLocked is an exported constant or variable used by the kiosk authentication engine.
	ErrOTPLocked = errors.New("otp locked after too many failed attempts")
	// ErrOTPMaxAttempts is an exported constant or variable used by the kiosk authentication engine.
	ErrOTPMaxAttempts = errors.New("maximum otp attempts exceeded")
	// ErrInvalidCode is an exported constant or variable used by the kiosk authentication engine.
	ErrInvalidCode = errors.New("invalid otp code")
	// ErrOTPRequestRateLimited is an exported constant or variable used by the kiosk authentication engine.
	ErrOTPRequestRateLimited = errors.New("otp request rate limited")
	// ErrOTPVerifyRateLimited is an exported constant or variable used by the kiosk authentication engine.
	ErrOTPVerifyRateLimited = errors.New("otp verification rate limited")
	// ErrRateLimited is an exported constant or variable used by the kiosk authentication engine.
	ErrRateLimited = errors.New("rate limited")
	// ErrUnauthenticated is an exported constant or variable used by the kiosk authentication engine.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrAccountInactive is an exported constant or variable used by the kiosk authentication engine.
	ErrAccountInactive = errors.New("account inactive")
	// ErrAccountNotFound is an exported constant or variable used by the kiosk authentication engine.
	ErrAccountNotFound = errors.New("account not found")
	// ErrDuplicateIdentifier is an exported constant or variable used by the kiosk authentication engine.
	ErrDuplicateIdentifier = errors.New("identifier already registered")
	// ErrProfileNotFound is an exported constant or variable used by the kiosk authentication engine.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrProvisioningFailed is an exported constant or variable used by the kiosk authentication engine.
	ErrProvisioningFailed = errors.New("account provisioning failed")
	// ErrRefreshTokenMismatch is an exported constant or variable used by the kiosk authentication engine.
	ErrRefreshTokenMismatch = errors.New("refresh token does not match stored token")
	// ErrNotificationFailed is an exported constant or variable used by the kiosk authentication engine.
	ErrNotificationFailed = errors.New("otp notification failed")
	// ErrStoreUnavailable is an exported constant or variable used by the kiosk authentication engine.
	ErrStoreUnavailable = errors.New("backing store unavailable")
	// ErrEngineNotReady is an exported constant or variable used by the kiosk authentication engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)

// InvalidCodeError reports a failed OTP comparison together with the number
// of attempts the caller has left before the challenge locks. It unwraps to
// [ErrInvalidCode] so errors.Is keeps working for callers that do not care
// about the count.
type InvalidCodeError struct {
	Remaining int
}

func (e *InvalidCodeError) Error() string {
	if e.Remaining == 1 {
		return "invalid otp code, 1 attempt remaining"
	}
	return fmt.Sprintf("invalid otp code, %d attempts remaining", e.Remaining)
}

func (e *InvalidCodeError) Unwrap() error {
	return ErrInvalidCode
}
