package kioskAuth

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/MrEthical07/kioskAuth/internal"
	"github.com/redis/go-redis/v9"
)

const (
	challengeKeyPrefix       = "ao"
	challengeRecordVersionV1 = 1
)

var (
	errChallengeNotFound         = errors.New("otp challenge not found")
	errChallengeLocked           = errors.New("otp challenge locked")
	errChallengeExpired          = errors.New("otp challenge expired")
	errChallengeAttemptsExceeded = errors.New("otp challenge attempts exceeded")
	errChallengeCodeMismatch     = errors.New("otp challenge code mismatch")
	errChallengeRedisUnavailable = errors.New("otp challenge redis unavailable")
)

// otpChallenge is the Redis-resident state of one pending login. At most one
// record exists per (loginType, identifier); issuing a new code overwrites
// whatever was there, locked or not.
type otpChallenge struct {
	CodeHash    [32]byte
	ExpiresAt   int64
	Attempts    uint16
	MaxAttempts uint16
	Locked      bool
}

type challengeStore struct {
	redis  *redis.Client
	prefix string
}

func newChallengeStore(redisClient *redis.Client) *challengeStore {
	return &challengeStore{
		redis:  redisClient,
		prefix: challengeKeyPrefix,
	}
}

func (s *challengeStore) key(identifier string, loginType LoginType) string {
	return s.prefix + ":" + string(loginType) + ":" + identifier
}

// Save persists a challenge, superseding any previous record for the same
// identifier and login type. The TTL is the store-level expiry sweep; the
// record's own ExpiresAt is authoritative for verification.
func (s *challengeStore) Save(
	ctx context.Context,
	identifier string,
	loginType LoginType,
	record *otpChallenge,
	ttl time.Duration,
) error {
	encoded, err := encodeOTPChallenge(record)
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, s.key(identifier, loginType), encoded, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", errChallengeRedisUnavailable, err)
	}

	return nil
}

// Delete removes a challenge. Missing records are not an error.
func (s *challengeStore) Delete(ctx context.Context, identifier string, loginType LoginType) error {
	if err := s.redis.Del(ctx, s.key(identifier, loginType)).Err(); err != nil {
		return fmt.Errorf("%w: %v", errChallengeRedisUnavailable, err)
	}

	return nil
}

// Verify runs one attempt against the stored challenge under WATCH so that
// concurrent attempts for the same identifier serialize: the attempt counter
// never loses an increment and a code is consumed at most once. The returned
// int is the attempts remaining after a mismatch; it is meaningful only with
// errChallengeCodeMismatch.
//
// Transition order is fixed: locked wins over expired, expired wins over the
// attempt cap, and the cap is checked before the counter increments, so a
// locked challenge never moves its counter again.
func (s *challengeStore) Verify(
	ctx context.Context,
	identifier string,
	loginType LoginType,
	providedHash [32]byte,
) (int, error) {
	const maxRetries = 4
	key := s.key(identifier, loginType)

	for i := 0; i < maxRetries; i++ {
		remaining := 0

		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				return err
			}

			record, err := decodeOTPChallenge(data)
			if err != nil {
				return err
			}

			if record.Locked {
				return errChallengeLocked
			}

			now := time.Now()
			if now.Unix() > record.ExpiresAt {
				_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
					pipe.Del(ctx, key)
					return nil
				})
				if err != nil {
					return err
				}
				return errChallengeExpired
			}

			ttl := time.Until(time.Unix(record.ExpiresAt, 0))
			if ttl <= 0 {
				ttl = time.Second
			}

			if record.Attempts >= record.MaxAttempts {
				record.Locked = true
				updated, err := encodeOTPChallenge(record)
				if err != nil {
					return err
				}
				_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
					pipe.Set(ctx, key, updated, ttl)
					return nil
				})
				if err != nil {
					return err
				}
				return errChallengeAttemptsExceeded
			}

			record.Attempts++

			if !internal.CodeHashEqual(record.CodeHash, providedHash) {
				remaining = int(record.MaxAttempts) - int(record.Attempts)
				updated, err := encodeOTPChallenge(record)
				if err != nil {
					return err
				}
				_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
					pipe.Set(ctx, key, updated, ttl)
					return nil
				})
				if err != nil {
					return err
				}
				return errChallengeCodeMismatch
			}

			// Match: consume the challenge so the code can never be
			// replayed, even if later steps of the login fail.
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Del(ctx, key)
				return nil
			})
			return err
		}, key)

		if err == redis.TxFailedErr {
			continue
		}
		if err != nil {
			switch {
			case errors.Is(err, redis.Nil):
				return 0, errChallengeNotFound
			case errors.Is(err, errChallengeLocked),
				errors.Is(err, errChallengeExpired),
				errors.Is(err, errChallengeAttemptsExceeded),
				errors.Is(err, errChallengeCodeMismatch):
				return remaining, err
			default:
				return 0, fmt.Errorf("%w: %v", errChallengeRedisUnavailable, err)
			}
		}

		return 0, nil
	}

	return 0, errChallengeNotFound
}

func encodeOTPChallenge(record *otpChallenge) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(challengeRecordVersionV1)

	var locked byte
	if record.Locked {
		locked = 1
	}
	buf.WriteByte(locked)

	if err := binary.Write(&buf, binary.BigEndian, record.Attempts); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, record.MaxAttempts); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, record.ExpiresAt); err != nil {
		return nil, err
	}
	buf.Write(record.CodeHash[:])

	return buf.Bytes(), nil
}

func decodeOTPChallenge(data []byte) (*otpChallenge, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != challengeRecordVersionV1 {
		return nil, errors.New("invalid otp challenge record version")
	}

	locked, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}

	record := &otpChallenge{
		Locked: locked == 1,
	}

	if err := binary.Read(reader, binary.BigEndian, &record.Attempts); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &record.MaxAttempts); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &record.ExpiresAt); err != nil {
		return nil, err
	}
	if _, err := io.ReadFull(reader, record.CodeHash[:]); err != nil {
		return nil, err
	}

	return record, nil
}
