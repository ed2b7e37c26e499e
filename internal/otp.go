package internal

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"math/big"
	"strconv"
)

// OTPCodeDigits is fixed by the kiosk wire contract; codes are zero-free at
// the leading position so every code is exactly six characters.
const OTPCodeDigits = 6

const (
	otpCodeMin  = 100000
	otpCodeSpan = 900000
)

var otpCodeSpanBig = big.NewInt(otpCodeSpan)

// NewOTPCode returns a uniformly distributed six-digit code in
// [100000, 999999] drawn from crypto/rand.
func NewOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, otpCodeSpanBig)
	if err != nil {
		return "", err
	}

	return strconv.FormatInt(otpCodeMin+n.Int64(), 10), nil
}

// HashOTPCode derives the stored digest for a code. Plaintext codes never
// reach Redis.
func HashOTPCode(code string) [32]byte {
	return sha256.Sum256([]byte(code))
}

// CodeHashEqual compares two code digests in constant time.
func CodeHashEqual(a, b [32]byte) bool {
	return subtle.ConstantTimeCompare(a[:], b[:]) == 1
}

// ValidOTPCodeShape reports whether the submitted string even qualifies as a
// code: exactly six ASCII digits. Anything else is rejected before the
// challenge store is consulted.
func ValidOTPCodeShape(code string) bool {
	if len(code) != OTPCodeDigits {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}
