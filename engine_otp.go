package kioskAuth

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/MrEthical07/kioskAuth/internal"
)

// RequestOTP describes the requestotp operation and its observable behavior.
//
// RequestOTP may return an error when input validation, dependency calls, or security checks fail.
// RequestOTP does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) RequestOTP(ctx context.Context, identifier string, loginType LoginType) (*OTPResult, error) {
	if e == nil || e.challenges == nil {
		return nil, ErrEngineNotReady
	}

	normalized, err := normalizeIdentifier(identifier, loginType)
	if err != nil {
		return nil, err
	}

	ip := clientIPFromContext(ctx)
	if err := e.otpLimiter.CheckRequest(ctx, ip, normalized, loginType); err != nil {
		if errors.Is(err, errOTPRequestRateLimited) {
			e.metricInc(MetricOTPRequestRateLimited)
			e.emitRateLimit(ctx, "otp_request", normalized, loginType)
			return nil, ErrOTPRequestRateLimited
		}
		return nil, ErrStoreUnavailable
	}

	code, err := internal.NewOTPCode()
	if err != nil {
		return nil, err
	}

	codeHash := internal.HashOTPCode(code)
	expiry := time.Duration(e.config.OTP.ExpiryMinutes) * time.Minute
	record := &otpChallenge{
		CodeHash:    codeHash,
		ExpiresAt:   time.Now().Add(expiry).Unix(),
		Attempts:    0,
		MaxAttempts: uint16(e.config.OTP.MaxAttempts),
		Locked:      false,
	}

	// Resolve the notification address before persisting so a storage
	// failure never leaves a code in flight without a stored challenge.
	address, displayName := e.lookupNotifyTarget(ctx, normalized, loginType)

	// Persist and deliver concurrently; issuance latency is dominated by
	// the delivery webhook, not Redis.
	saveErrCh := make(chan error, 1)
	go func() {
		saveErrCh <- e.challenges.Save(ctx, normalized, loginType, record, expiry)
	}()

	notified := false
	var notifyErr error
	if address != "" {
		notifyErr = e.notifier.SendOTP(ctx, address, displayName, code)
		notified = notifyErr == nil
	}

	if err := <-saveErrCh; err != nil {
		e.emitAudit(ctx, auditEventOTPRequested, false, "", normalized, loginType, ErrStoreUnavailable, nil)
		return nil, ErrStoreUnavailable
	}

	if address != "" {
		if notified {
			e.metricInc(MetricNotificationSent)
		} else {
			e.metricInc(MetricNotificationFailed)
		}
	}

	e.metricInc(MetricOTPRequested)
	e.emitAudit(ctx, auditEventOTPRequested, true, "", normalized, loginType, notifyErr, func() map[string]string {
		return map[string]string{
			"notified": strconv.FormatBool(notified),
		}
	})

	result := &OTPResult{
		ExpiresInMinutes: e.config.OTP.ExpiryMinutes,
		Notified:         notified,
	}
	if e.config.Notify.EchoCodeInResult {
		result.DebugCode = code
	}

	return result, nil
}

// VerifyOTP describes the verifyotp operation and its observable behavior.
//
// VerifyOTP may return an error when input validation, dependency calls, or security checks fail.
// VerifyOTP does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) VerifyOTP(ctx context.Context, identifier string, loginType LoginType, code string) (*LoginResult, error) {
	if e == nil || e.challenges == nil {
		return nil, ErrEngineNotReady
	}

	if e.metrics.LatencyEnabled() {
		start := time.Now()
		defer func() {
			e.metrics.Observe(MetricVerifyLatency, time.Since(start))
		}()
	}

	normalized, err := normalizeIdentifier(identifier, loginType)
	if err != nil {
		return nil, err
	}
	if !internal.ValidOTPCodeShape(code) {
		return nil, ErrMalformedCode
	}

	ip := clientIPFromContext(ctx)
	if err := e.otpLimiter.CheckVerify(ctx, ip, normalized, loginType); err != nil {
		if errors.Is(err, errOTPVerifyRateLimited) {
			e.metricInc(MetricOTPVerifyRateLimited)
			e.emitRateLimit(ctx, "otp_verify", normalized, loginType)
			return nil, ErrOTPVerifyRateLimited
		}
		return nil, ErrStoreUnavailable
	}

	remaining, err := e.challenges.Verify(ctx, normalized, loginType, internal.HashOTPCode(code))
	if err != nil {
		return nil, e.mapVerifyError(ctx, normalized, loginType, remaining, err)
	}

	e.metricInc(MetricOTPVerifySuccess)
	e.emitAudit(ctx, auditEventOTPVerified, true, "", normalized, loginType, nil, nil)

	return e.completeLogin(ctx, normalized, loginType)
}

// mapVerifyError converts challenge-store verdicts into the public error
// taxonomy and records the corresponding audit and metric signals.
func (e *Engine) mapVerifyError(
	ctx context.Context,
	identifier string,
	loginType LoginType,
	remaining int,
	err error,
) error {
	switch {
	case errors.Is(err, errChallengeNotFound):
		e.metricInc(MetricOTPVerifyFailure)
		e.emitAudit(ctx, auditEventOTPFailed, false, "", identifier, loginType, ErrOTPInvalidOrExpired, nil)
		return ErrOTPInvalidOrExpired

	case errors.Is(err, errChallengeLocked):
		e.metricInc(MetricOTPVerifyFailure)
		e.emitAudit(ctx, auditEventOTPLocked, false, "", identifier, loginType, ErrOTPLocked, nil)
		return ErrOTPLocked

	case errors.Is(err, errChallengeExpired):
		e.metricInc(MetricOTPVerifyFailure)
		e.metricInc(MetricOTPExpired)
		e.emitAudit(ctx, auditEventOTPExpired, false, "", identifier, loginType, ErrOTPExpired, nil)
		return ErrOTPExpired

	case errors.Is(err, errChallengeAttemptsExceeded):
		e.metricInc(MetricOTPVerifyFailure)
		e.metricInc(MetricOTPLocked)
		e.emitAudit(ctx, auditEventOTPLocked, false, "", identifier, loginType, ErrOTPMaxAttempts, nil)
		return ErrOTPMaxAttempts

	case errors.Is(err, errChallengeCodeMismatch):
		e.metricInc(MetricOTPVerifyFailure)
		e.emitAudit(ctx, auditEventOTPFailed, false, "", identifier, loginType, ErrInvalidCode, func() map[string]string {
			return map[string]string{
				"attempts_remaining": strconv.Itoa(remaining),
			}
		})
		return &InvalidCodeError{Remaining: remaining}

	default:
		e.metricInc(MetricOTPVerifyFailure)
		e.emitAudit(ctx, auditEventOTPFailed, false, "", identifier, loginType, ErrStoreUnavailable, nil)
		return ErrStoreUnavailable
	}
}

// completeLogin runs the post-verification half of a login: resolve or
// provision the account, stamp last login, mint a token pair, and persist
// the refresh token. The challenge was already consumed, so any failure
// here sends the citizen back through a fresh OTP.
func (e *Engine) completeLogin(ctx context.Context, identifier string, loginType LoginType) (*LoginResult, error) {
	account, provisioned, err := e.resolveOrProvision(ctx, identifier, loginType)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailed, false, "", identifier, loginType, err, nil)
		return nil, err
	}

	if !account.IsActive {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailed, false, account.AccountID, identifier, loginType, ErrAccountInactive, nil)
		return nil, ErrAccountInactive
	}

	now := time.Now()
	if err := e.accounts.UpdateLastLogin(ctx, account.AccountID, now); err != nil {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailed, false, account.AccountID, identifier, loginType, ErrStoreUnavailable, nil)
		return nil, ErrStoreUnavailable
	}
	account.LastLoginAt = now

	accessToken, err := e.jwtManager.CreateAccess(
		account.AccountID,
		account.MobileNumber,
		account.AadharNumber,
		account.ConsumerID,
		account.Role,
	)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailed, false, account.AccountID, identifier, loginType, err, nil)
		return nil, err
	}

	refreshToken, err := e.jwtManager.CreateRefresh(account.AccountID)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailed, false, account.AccountID, identifier, loginType, err, nil)
		return nil, err
	}

	if err := e.accounts.SetRefreshToken(ctx, account.AccountID, refreshToken); err != nil {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailed, false, account.AccountID, identifier, loginType, ErrStoreUnavailable, nil)
		return nil, ErrStoreUnavailable
	}
	account.CurrentRefreshToken = refreshToken

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventLoginSuccess, true, account.AccountID, identifier, loginType, nil, func() map[string]string {
		return map[string]string{
			"provisioned": strconv.FormatBool(provisioned),
		}
	})

	return &LoginResult{
		Account:      account,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Provisioned:  provisioned,
	}, nil
}

// lookupNotifyTarget resolves the notification address and display name for
// an identifier. Best effort: a missing account or profile just means no
// delivery, never a failed issuance.
func (e *Engine) lookupNotifyTarget(ctx context.Context, identifier string, loginType LoginType) (string, string) {
	account, err := e.accounts.GetAccountByIdentifier(ctx, identifier, loginType)
	if err != nil {
		return "", ""
	}

	profile, err := e.profiles.GetProfile(ctx, account.AccountID)
	if err != nil {
		return "", ""
	}

	return profile.Email, profile.FullName
}

// normalizeIdentifier validates the identifier against its login type and
// returns the canonical form: mobile numbers are ten digits, Aadhar numbers
// twelve digits, and consumer IDs are uppercased.
func normalizeIdentifier(identifier string, loginType LoginType) (string, error) {
	identifier = strings.TrimSpace(identifier)

	switch loginType {
	case LoginMobile:
		if !allDigits(identifier) || len(identifier) != 10 {
			return "", ErrInvalidIdentifier
		}
		return identifier, nil
	case LoginAadhar:
		if !allDigits(identifier) || len(identifier) != 12 {
			return "", ErrInvalidIdentifier
		}
		return identifier, nil
	case LoginConsumerID:
		if identifier == "" {
			return "", ErrInvalidIdentifier
		}
		return strings.ToUpper(identifier), nil
	default:
		return "", ErrInvalidLoginType
	}
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
