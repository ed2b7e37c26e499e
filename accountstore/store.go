package accountstore

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	kioskAuth "github.com/MrEthical07/kioskAuth"
)

const keyPrefix = "ak"

// Account hash field names.
const (
	fieldAccountID    = "account_id"
	fieldMobile       = "mobile_number"
	fieldAadhar       = "aadhar_number"
	fieldConsumerID   = "consumer_id"
	fieldPrimaryLogin = "primary_login_type"
	fieldRole         = "role"
	fieldIsActive     = "is_active"
	fieldRefreshToken = "refresh_token"
	fieldLastLoginAt  = "last_login_at"
)

// Profile hash field names.
const (
	fieldFullName         = "full_name"
	fieldEmail            = "email"
	fieldDateOfBirth      = "date_of_birth"
	fieldGender           = "gender"
	fieldAlternatePhone   = "alternate_phone"
	fieldAddress          = "address"
	fieldOccupation       = "occupation"
	fieldEmergencyContact = "emergency_contact"
)

// Store defines a public type used by kioskAuth APIs.
//
// Store instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Store struct {
	redis *redis.Client
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New(redisClient *redis.Client) *Store {
	return &Store{redis: redisClient}
}

func accountKey(accountID string) string {
	return keyPrefix + ":acct:" + accountID
}

func profileKey(accountID string) string {
	return keyPrefix + ":prof:" + accountID
}

func indexKey(identifier string, loginType kioskAuth.LoginType) string {
	return keyPrefix + ":idx:" + string(loginType) + ":" + identifier
}

// GetAccountByIdentifier describes the getaccountbyidentifier operation and its observable behavior.
//
// GetAccountByIdentifier may return an error when input validation, dependency calls, or security checks fail.
// GetAccountByIdentifier does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) GetAccountByIdentifier(ctx context.Context, identifier string, loginType kioskAuth.LoginType) (kioskAuth.Account, error) {
	accountID, err := s.redis.Get(ctx, indexKey(identifier, loginType)).Result()
	if err == redis.Nil {
		return kioskAuth.Account{}, kioskAuth.ErrAccountNotFound
	}
	if err != nil {
		return kioskAuth.Account{}, fmt.Errorf("%w: %v", kioskAuth.ErrStoreUnavailable, err)
	}

	return s.GetAccountByID(ctx, accountID)
}

// GetAccountByID describes the getaccountbyid operation and its observable behavior.
//
// GetAccountByID may return an error when input validation, dependency calls, or security checks fail.
// GetAccountByID does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) GetAccountByID(ctx context.Context, accountID string) (kioskAuth.Account, error) {
	fields, err := s.redis.HGetAll(ctx, accountKey(accountID)).Result()
	if err != nil {
		return kioskAuth.Account{}, fmt.Errorf("%w: %v", kioskAuth.ErrStoreUnavailable, err)
	}
	if len(fields) == 0 {
		return kioskAuth.Account{}, kioskAuth.ErrAccountNotFound
	}

	return decodeAccount(fields), nil
}

// CreateAccount describes the createaccount operation and its observable behavior.
//
// CreateAccount may return an error when input validation, dependency calls, or security checks fail.
// CreateAccount does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) CreateAccount(ctx context.Context, input kioskAuth.CreateAccountInput) (kioskAuth.Account, error) {
	accountID := uuid.NewString()

	type indexClaim struct {
		identifier string
		loginType  kioskAuth.LoginType
	}
	var claims []indexClaim
	if input.MobileNumber != "" {
		claims = append(claims, indexClaim{input.MobileNumber, kioskAuth.LoginMobile})
	}
	if input.AadharNumber != "" {
		claims = append(claims, indexClaim{input.AadharNumber, kioskAuth.LoginAadhar})
	}
	if input.ConsumerID != "" {
		claims = append(claims, indexClaim{input.ConsumerID, kioskAuth.LoginConsumerID})
	}
	if len(claims) == 0 {
		return kioskAuth.Account{}, kioskAuth.ErrInvalidIdentifier
	}

	// Claim every identifier index before writing the record. On a lost
	// claim, release the ones already taken so the winner stays sole owner.
	var taken []string
	for _, c := range claims {
		key := indexKey(c.identifier, c.loginType)
		ok, err := s.redis.SetNX(ctx, key, accountID, 0).Result()
		if err != nil {
			s.releaseKeys(ctx, taken)
			return kioskAuth.Account{}, fmt.Errorf("%w: %v", kioskAuth.ErrStoreUnavailable, err)
		}
		if !ok {
			s.releaseKeys(ctx, taken)
			return kioskAuth.Account{}, kioskAuth.ErrDuplicateIdentifier
		}
		taken = append(taken, key)
	}

	account := kioskAuth.Account{
		AccountID:        accountID,
		MobileNumber:     input.MobileNumber,
		AadharNumber:     input.AadharNumber,
		ConsumerID:       input.ConsumerID,
		PrimaryLoginType: input.PrimaryLoginType,
		Role:             input.Role,
		IsActive:         input.IsActive,
	}

	if err := s.redis.HSet(ctx, accountKey(accountID), encodeAccount(account)).Err(); err != nil {
		s.releaseKeys(ctx, taken)
		return kioskAuth.Account{}, fmt.Errorf("%w: %v", kioskAuth.ErrStoreUnavailable, err)
	}

	return account, nil
}

// DeleteAccount describes the deleteaccount operation and its observable behavior.
//
// DeleteAccount may return an error when input validation, dependency calls, or security checks fail.
// DeleteAccount does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) DeleteAccount(ctx context.Context, accountID string) error {
	account, err := s.GetAccountByID(ctx, accountID)
	if err != nil {
		if err == kioskAuth.ErrAccountNotFound {
			return nil
		}
		return err
	}

	keys := []string{accountKey(accountID), profileKey(accountID)}
	if account.MobileNumber != "" {
		keys = append(keys, indexKey(account.MobileNumber, kioskAuth.LoginMobile))
	}
	if account.AadharNumber != "" {
		keys = append(keys, indexKey(account.AadharNumber, kioskAuth.LoginAadhar))
	}
	if account.ConsumerID != "" {
		keys = append(keys, indexKey(account.ConsumerID, kioskAuth.LoginConsumerID))
	}

	if err := s.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%w: %v", kioskAuth.ErrStoreUnavailable, err)
	}

	return nil
}

// UpdateLastLogin describes the updatelastlogin operation and its observable behavior.
//
// UpdateLastLogin may return an error when input validation, dependency calls, or security checks fail.
// UpdateLastLogin does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) UpdateLastLogin(ctx context.Context, accountID string, at time.Time) error {
	return s.setAccountField(ctx, accountID, fieldLastLoginAt, strconv.FormatInt(at.Unix(), 10))
}

// SetRefreshToken describes the setrefreshtoken operation and its observable behavior.
//
// SetRefreshToken may return an error when input validation, dependency calls, or security checks fail.
// SetRefreshToken does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) SetRefreshToken(ctx context.Context, accountID, token string) error {
	return s.setAccountField(ctx, accountID, fieldRefreshToken, token)
}

// RotateRefreshToken describes the rotaterefreshtoken operation and its observable behavior.
//
// RotateRefreshToken may return an error when input validation, dependency calls, or security checks fail.
// RotateRefreshToken does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) RotateRefreshToken(ctx context.Context, accountID, current, next string) error {
	const maxRetries = 4
	key := accountKey(accountID)

	for i := 0; i < maxRetries; i++ {
		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			exists, err := tx.Exists(ctx, key).Result()
			if err != nil {
				return err
			}
			if exists == 0 {
				return kioskAuth.ErrAccountNotFound
			}

			stored, err := tx.HGet(ctx, key, fieldRefreshToken).Result()
			if err != nil && err != redis.Nil {
				return err
			}
			if stored != current {
				return kioskAuth.ErrRefreshTokenMismatch
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.HSet(ctx, key, fieldRefreshToken, next)
				return nil
			})
			return err
		}, key)

		if err == redis.TxFailedErr {
			continue
		}
		if err == kioskAuth.ErrAccountNotFound || err == kioskAuth.ErrRefreshTokenMismatch {
			return err
		}
		if err != nil {
			return fmt.Errorf("%w: %v", kioskAuth.ErrStoreUnavailable, err)
		}

		return nil
	}

	return kioskAuth.ErrRefreshTokenMismatch
}

// ClearRefreshToken describes the clearrefreshtoken operation and its observable behavior.
//
// ClearRefreshToken may return an error when input validation, dependency calls, or security checks fail.
// ClearRefreshToken does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) ClearRefreshToken(ctx context.Context, accountID string) error {
	return s.setAccountField(ctx, accountID, fieldRefreshToken, "")
}

// CreateProfile describes the createprofile operation and its observable behavior.
//
// CreateProfile may return an error when input validation, dependency calls, or security checks fail.
// CreateProfile does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) CreateProfile(ctx context.Context, accountID string, input kioskAuth.ProfileInput) error {
	if err := s.redis.HSet(ctx, profileKey(accountID), encodeProfile(input)).Err(); err != nil {
		return fmt.Errorf("%w: %v", kioskAuth.ErrStoreUnavailable, err)
	}

	return nil
}

// GetProfile describes the getprofile operation and its observable behavior.
//
// GetProfile may return an error when input validation, dependency calls, or security checks fail.
// GetProfile does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) GetProfile(ctx context.Context, accountID string) (kioskAuth.Profile, error) {
	fields, err := s.redis.HGetAll(ctx, profileKey(accountID)).Result()
	if err != nil {
		return kioskAuth.Profile{}, fmt.Errorf("%w: %v", kioskAuth.ErrStoreUnavailable, err)
	}
	if len(fields) == 0 {
		return kioskAuth.Profile{}, kioskAuth.ErrProfileNotFound
	}

	return decodeProfile(accountID, fields), nil
}

// UpdateProfile describes the updateprofile operation and its observable behavior.
//
// UpdateProfile may return an error when input validation, dependency calls, or security checks fail.
// UpdateProfile does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) UpdateProfile(ctx context.Context, accountID string, input kioskAuth.ProfileInput) (kioskAuth.Profile, error) {
	key := profileKey(accountID)

	exists, err := s.redis.Exists(ctx, key).Result()
	if err != nil {
		return kioskAuth.Profile{}, fmt.Errorf("%w: %v", kioskAuth.ErrStoreUnavailable, err)
	}
	if exists == 0 {
		return kioskAuth.Profile{}, kioskAuth.ErrProfileNotFound
	}

	if err := s.redis.HSet(ctx, key, encodeProfile(input)).Err(); err != nil {
		return kioskAuth.Profile{}, fmt.Errorf("%w: %v", kioskAuth.ErrStoreUnavailable, err)
	}

	return s.GetProfile(ctx, accountID)
}

func (s *Store) setAccountField(ctx context.Context, accountID, field, value string) error {
	key := accountKey(accountID)

	exists, err := s.redis.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", kioskAuth.ErrStoreUnavailable, err)
	}
	if exists == 0 {
		return kioskAuth.ErrAccountNotFound
	}

	if err := s.redis.HSet(ctx, key, field, value).Err(); err != nil {
		return fmt.Errorf("%w: %v", kioskAuth.ErrStoreUnavailable, err)
	}

	return nil
}

func (s *Store) releaseKeys(ctx context.Context, keys []string) {
	if len(keys) == 0 {
		return
	}
	_ = s.redis.Del(ctx, keys...).Err()
}

func encodeAccount(a kioskAuth.Account) map[string]interface{} {
	active := "0"
	if a.IsActive {
		active = "1"
	}

	return map[string]interface{}{
		fieldAccountID:    a.AccountID,
		fieldMobile:       a.MobileNumber,
		fieldAadhar:       a.AadharNumber,
		fieldConsumerID:   a.ConsumerID,
		fieldPrimaryLogin: string(a.PrimaryLoginType),
		fieldRole:         a.Role,
		fieldIsActive:     active,
		fieldRefreshToken: a.CurrentRefreshToken,
		fieldLastLoginAt:  strconv.FormatInt(a.LastLoginAt.Unix(), 10),
	}
}

func decodeAccount(fields map[string]string) kioskAuth.Account {
	account := kioskAuth.Account{
		AccountID:           fields[fieldAccountID],
		MobileNumber:        fields[fieldMobile],
		AadharNumber:        fields[fieldAadhar],
		ConsumerID:          fields[fieldConsumerID],
		PrimaryLoginType:    kioskAuth.LoginType(fields[fieldPrimaryLogin]),
		Role:                fields[fieldRole],
		IsActive:            fields[fieldIsActive] == "1",
		CurrentRefreshToken: fields[fieldRefreshToken],
	}

	if unix, err := strconv.ParseInt(fields[fieldLastLoginAt], 10, 64); err == nil && unix > 0 {
		account.LastLoginAt = time.Unix(unix, 0)
	}

	return account
}

func encodeProfile(p kioskAuth.ProfileInput) map[string]interface{} {
	return map[string]interface{}{
		fieldFullName:         p.FullName,
		fieldEmail:            p.Email,
		fieldDateOfBirth:      p.DateOfBirth,
		fieldGender:           p.Gender,
		fieldAlternatePhone:   p.AlternatePhone,
		fieldAddress:          p.Address,
		fieldOccupation:       p.Occupation,
		fieldEmergencyContact: p.EmergencyContact,
	}
}

func decodeProfile(accountID string, fields map[string]string) kioskAuth.Profile {
	return kioskAuth.Profile{
		AccountID:        accountID,
		FullName:         fields[fieldFullName],
		Email:            fields[fieldEmail],
		DateOfBirth:      fields[fieldDateOfBirth],
		Gender:           fields[fieldGender],
		AlternatePhone:   fields[fieldAlternatePhone],
		Address:          fields[fieldAddress],
		Occupation:       fields[fieldOccupation],
		EmergencyContact: fields[fieldEmergencyContact],
	}
}
