package kioskAuth

import (
	"context"
	"errors"
	"time"
)

// Event type names match the platform-wide audit enum consumed by the
// grievance and billing services; they are part of the wire contract and
// must stay uppercase.
const (
	auditEventOTPRequested       = "OTP_REQUESTED"
	auditEventOTPVerified        = "OTP_VERIFIED"
	auditEventOTPFailed          = "OTP_FAILED"
	auditEventOTPExpired         = "OTP_EXPIRED"
	auditEventOTPLocked          = "OTP_LOCKED"
	auditEventLoginSuccess       = "LOGIN_SUCCESS"
	auditEventLoginFailed        = "LOGIN_FAILED"
	auditEventLogout             = "LOGOUT"
	auditEventTokenRefresh       = "TOKEN_REFRESH"
	auditEventTokenRefreshFailed = "TOKEN_REFRESH_FAILED"
	auditEventUserCreated        = "USER_CREATED"
	auditEventProfileUpdated     = "PROFILE_UPDATED"
	auditEventRateLimited        = "RATE_LIMITED"
)

// AuditErrorCode defines a public type used by kioskAuth APIs.
//
// AuditErrorCode instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditErrorCode string

const (
	auditErrInvalidArgument  AuditErrorCode = "invalid_argument"
	auditErrInvalidOrExpired AuditErrorCode = "otp_invalid_or_expired"
	auditErrExpired          AuditErrorCode = "otp_expired"
	auditErrLocked           AuditErrorCode = "otp_locked"
	auditErrMaxAttempts      AuditErrorCode = "otp_max_attempts"
	auditErrInvalidCode      AuditErrorCode = "invalid_code"
	auditErrRateLimited      AuditErrorCode = "rate_limited"
	auditErrUnauthenticated  AuditErrorCode = "unauthenticated"
	auditErrAccountInactive  AuditErrorCode = "account_inactive"
	auditErrAccountNotFound  AuditErrorCode = "account_not_found"
	auditErrDuplicate        AuditErrorCode = "duplicate_identifier"
	auditErrProvisioning     AuditErrorCode = "provisioning_failed"
	auditErrTokenMismatch    AuditErrorCode = "refresh_token_mismatch"
	auditErrNotification     AuditErrorCode = "notification_failed"
	auditErrUnavailable      AuditErrorCode = "backend_unavailable"
	auditErrInternal         AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	accountID string,
	identifier string,
	loginType LoginType,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp:  time.Now().UTC(),
		EventType:  eventType,
		AccountID:  accountID,
		Identifier: identifier,
		LoginType:  string(loginType),
		IP:         clientIPFromContext(ctx),
		UserAgent:  userAgentFromContext(ctx),
		Success:    success,
		Metadata:   metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func (e *Engine) emitRateLimit(
	ctx context.Context,
	scope string,
	identifier string,
	loginType LoginType,
) {
	e.metricInc(MetricRateLimitHit)
	e.emitAudit(ctx, auditEventRateLimited, false, "", identifier, loginType, ErrRateLimited, func() map[string]string {
		return map[string]string{
			"scope": scope,
		}
	})
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrInvalidLoginType),
		errors.Is(err, ErrInvalidIdentifier),
		errors.Is(err, ErrMalformedCode):
		return auditErrInvalidArgument
	case errors.Is(err, ErrOTPInvalidOrExpired):
		return auditErrInvalidOrExpired
	case errors.Is(err, ErrOTPExpired):
		return auditErrExpired
	case errors.Is(err, ErrOTPLocked):
		return auditErrLocked
	case errors.Is(err, ErrOTPMaxAttempts):
		return auditErrMaxAttempts
	case errors.Is(err, ErrInvalidCode):
		return auditErrInvalidCode
	case errors.Is(err, ErrOTPRequestRateLimited),
		errors.Is(err, ErrOTPVerifyRateLimited),
		errors.Is(err, ErrRateLimited):
		return auditErrRateLimited
	case errors.Is(err, ErrRefreshTokenMismatch):
		return auditErrTokenMismatch
	case errors.Is(err, ErrUnauthenticated):
		return auditErrUnauthenticated
	case errors.Is(err, ErrAccountInactive):
		return auditErrAccountInactive
	case errors.Is(err, ErrAccountNotFound),
		errors.Is(err, ErrProfileNotFound):
		return auditErrAccountNotFound
	case errors.Is(err, ErrDuplicateIdentifier):
		return auditErrDuplicate
	case errors.Is(err, ErrProvisioningFailed):
		return auditErrProvisioning
	case errors.Is(err, ErrNotificationFailed):
		return auditErrNotification
	case errors.Is(err, ErrStoreUnavailable):
		return auditErrUnavailable
	default:
		return auditErrInternal
	}
}
