// Package otp generates and verifies numeric one-time codes.
// Codes are never stored in clear: callers keep the Hash and compare with Equal.
package otp

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"math/big"
	"strings"
)

// Digit bounds accepted by Generate.
const (
	MinDigits = 4
	MaxDigits = 10
)

// ErrInvalidDigits is returned when the requested length is out of bounds.
var ErrInvalidDigits = errors.New("invalid otp digits")

// Generate returns a uniformly random numeric code of the given length.
func Generate(digits int) (string, error) {
	if digits < MinDigits || digits > MaxDigits {
		return "", ErrInvalidDigits
	}

	var b strings.Builder
	b.Grow(digits)
	ten := big.NewInt(10)
	for range digits {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + n.Int64()))
	}
	return b.String(), nil
}

// Hash returns the SHA-256 digest of code.
func Hash(code string) [32]byte {
	return sha256.Sum256([]byte(strings.TrimSpace(code)))
}

// Equal compares a stored digest against a candidate code in constant time.
func Equal(stored [32]byte, candidate string) bool {
	h := Hash(candidate)
	return subtle.ConstantTimeCompare(stored[:], h[:]) == 1
}
