package kioskAuth

import (
	"context"
	"errors"
	"log"
)

// Refresh rotates a refresh token: the submitted token must match the single
// stored token for its account, and a successful call replaces it with a new
// one. Presenting an already-rotated token is treated as theft evidence and
// revokes the stored token, forcing a fresh OTP login on every device.
//
// Refresh may return an error when input validation, dependency calls, or security checks fail.
// Refresh does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if e == nil || e.jwtManager == nil {
		return nil, ErrEngineNotReady
	}

	claims, err := e.jwtManager.ParseRefresh(refreshToken)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventTokenRefreshFailed, false, "", "", "", ErrUnauthenticated, nil)
		return nil, ErrUnauthenticated
	}

	account, err := e.accounts.GetAccountByID(ctx, claims.UID)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		if errors.Is(err, ErrAccountNotFound) {
			e.emitAudit(ctx, auditEventTokenRefreshFailed, false, claims.UID, "", "", ErrUnauthenticated, nil)
			return nil, ErrUnauthenticated
		}
		e.emitAudit(ctx, auditEventTokenRefreshFailed, false, claims.UID, "", "", ErrStoreUnavailable, nil)
		return nil, ErrStoreUnavailable
	}

	// A stale token always reads as theft, even on a deactivated account;
	// only the current holder of the live token learns the account state.
	if account.CurrentRefreshToken != refreshToken {
		return nil, e.handleRefreshReuse(ctx, account.AccountID)
	}

	if !account.IsActive {
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventTokenRefreshFailed, false, account.AccountID, "", "", ErrAccountInactive, nil)
		return nil, ErrAccountInactive
	}

	accessToken, err := e.jwtManager.CreateAccess(
		account.AccountID,
		account.MobileNumber,
		account.AadharNumber,
		account.ConsumerID,
		account.Role,
	)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventTokenRefreshFailed, false, account.AccountID, "", "", err, nil)
		return nil, err
	}

	nextRefresh, err := e.jwtManager.CreateRefresh(account.AccountID)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventTokenRefreshFailed, false, account.AccountID, "", "", err, nil)
		return nil, err
	}

	// CAS against the submitted token; of two concurrent refreshes exactly
	// one lands, and the loser is handled as reuse.
	if err := e.accounts.RotateRefreshToken(ctx, account.AccountID, refreshToken, nextRefresh); err != nil {
		if errors.Is(err, ErrRefreshTokenMismatch) {
			return nil, e.handleRefreshReuse(ctx, account.AccountID)
		}
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventTokenRefreshFailed, false, account.AccountID, "", "", ErrStoreUnavailable, nil)
		return nil, ErrStoreUnavailable
	}

	e.metricInc(MetricRefreshSuccess)
	e.emitAudit(ctx, auditEventTokenRefresh, true, account.AccountID, "", "", nil, nil)

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: nextRefresh,
	}, nil
}

// handleRefreshReuse is the theft path: clear the stored token so neither
// the thief nor the victim can refresh again without a new login.
func (e *Engine) handleRefreshReuse(ctx context.Context, accountID string) error {
	if err := e.accounts.ClearRefreshToken(ctx, accountID); err != nil {
		log.Print("kioskAuth: stored token revocation failed after reuse detection")
	}

	e.metricInc(MetricRefreshFailure)
	e.metricInc(MetricRefreshReuseDetected)
	e.emitAudit(ctx, auditEventTokenRefreshFailed, false, accountID, "", "", ErrRefreshTokenMismatch, func() map[string]string {
		return map[string]string{
			"reuse_detected": "true",
		}
	})

	return ErrUnauthenticated
}

// Logout clears the account's stored refresh token. Idempotent: logging out
// an already logged-out account succeeds.
//
// Logout may return an error when input validation, dependency calls, or security checks fail.
// Logout does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Logout(ctx context.Context, accountID string) error {
	if e == nil || e.accounts == nil {
		return ErrEngineNotReady
	}
	if accountID == "" {
		return ErrUnauthenticated
	}

	if err := e.accounts.ClearRefreshToken(ctx, accountID); err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return ErrUnauthenticated
		}
		return ErrStoreUnavailable
	}

	e.metricInc(MetricLogout)
	e.emitAudit(ctx, auditEventLogout, true, accountID, "", "", nil, nil)

	return nil
}

// LogoutByAccessToken resolves the account from a bearer access token and
// logs it out. Convenience for transport layers that only hold the token.
//
// LogoutByAccessToken may return an error when input validation, dependency calls, or security checks fail.
// LogoutByAccessToken does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) LogoutByAccessToken(ctx context.Context, accessToken string) error {
	result, err := e.ValidateAccess(ctx, accessToken)
	if err != nil {
		return err
	}

	return e.Logout(ctx, result.AccountID)
}
