package kioskAuth

import (
	"context"
	"errors"
)

// resolveOrProvision finds the account registered under an identifier, or
// creates one when provisioning is enabled. The bool reports whether this
// call created the account.
func (e *Engine) resolveOrProvision(ctx context.Context, identifier string, loginType LoginType) (Account, bool, error) {
	account, err := e.accounts.GetAccountByIdentifier(ctx, identifier, loginType)
	if err == nil {
		return account, false, nil
	}
	if !errors.Is(err, ErrAccountNotFound) {
		return Account{}, false, ErrStoreUnavailable
	}

	if !e.config.Account.ProvisionMissing {
		return Account{}, false, ErrAccountNotFound
	}

	account, err = e.provisionAccount(ctx, identifier, loginType)
	if err != nil {
		return Account{}, false, err
	}

	return account, true, nil
}

// provisionAccount creates an account plus an empty profile on first login.
// A profile-create failure rolls the account back so a retry does not hit
// [ErrDuplicateIdentifier].
func (e *Engine) provisionAccount(ctx context.Context, identifier string, loginType LoginType) (Account, error) {
	input := CreateAccountInput{
		PrimaryLoginType: loginType,
		Role:             e.config.Account.DefaultRole,
		IsActive:         true,
	}

	switch loginType {
	case LoginMobile:
		input.MobileNumber = identifier
	case LoginAadhar:
		input.AadharNumber = identifier
	case LoginConsumerID:
		input.ConsumerID = identifier
	}

	account, err := e.accounts.CreateAccount(ctx, input)
	if err != nil {
		if errors.Is(err, ErrDuplicateIdentifier) {
			// Lost a provisioning race; the winner's account is the one
			// to log into.
			account, err = e.accounts.GetAccountByIdentifier(ctx, identifier, loginType)
			if err != nil {
				return Account{}, ErrProvisioningFailed
			}
			return account, nil
		}
		return Account{}, ErrProvisioningFailed
	}

	if err := e.profiles.CreateProfile(ctx, account.AccountID, ProfileInput{}); err != nil {
		_ = e.accounts.DeleteAccount(ctx, account.AccountID)
		return Account{}, ErrProvisioningFailed
	}

	e.metricInc(MetricAccountProvisioned)
	e.emitAudit(ctx, auditEventUserCreated, true, account.AccountID, identifier, loginType, nil, nil)

	return account, nil
}

// Profile describes the profile operation and its observable behavior.
//
// Profile may return an error when input validation, dependency calls, or security checks fail.
// Profile does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Profile(ctx context.Context, accountID string) (*ProfileResult, error) {
	if e == nil || e.accounts == nil {
		return nil, ErrEngineNotReady
	}
	if accountID == "" {
		return nil, ErrAccountNotFound
	}

	account, err := e.accounts.GetAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, ErrStoreUnavailable
	}

	profile, err := e.profiles.GetProfile(ctx, accountID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, ErrStoreUnavailable
	}

	return &ProfileResult{
		Account: account,
		Profile: profile,
	}, nil
}

// UpdateProfile describes the updateprofile operation and its observable behavior.
//
// UpdateProfile may return an error when input validation, dependency calls, or security checks fail.
// UpdateProfile does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) UpdateProfile(ctx context.Context, accountID string, input ProfileInput) (*Profile, error) {
	if e == nil || e.profiles == nil {
		return nil, ErrEngineNotReady
	}
	if accountID == "" {
		return nil, ErrAccountNotFound
	}

	if _, err := e.accounts.GetAccountByID(ctx, accountID); err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, ErrStoreUnavailable
	}

	profile, err := e.profiles.UpdateProfile(ctx, accountID, input)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, ErrStoreUnavailable
	}

	e.metricInc(MetricProfileUpdated)
	e.emitAudit(ctx, auditEventProfileUpdated, true, accountID, "", "", nil, nil)

	return &profile, nil
}
