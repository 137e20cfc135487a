package otp

import (
	"crypto/hmac"
	"crypto/sha1" //nolint:gosec // RFC 4226 mandates HMAC-SHA1
	"encoding/base32"
	"encoding/binary"
	"errors"
	"strconv"
	"strings"
)

const (
	// Digits is the length of every generated code.
	Digits = 6
	// Period is the length of one time step in seconds.
	Period = 30
	// DefaultWindow is the number of steps accepted on either side of the current one.
	DefaultWindow uint = 1

	modulo = 1_000_000
)

var (
	// ErrInvalidSecret is returned when the encoded secret is not valid base32.
	ErrInvalidSecret = errors.New("otp: invalid base32 secret")
	// ErrMalformedCode is returned when a submitted code is not exactly six digits.
	ErrMalformedCode = errors.New("otp: code must be 6 digits")
)

// DecodeSecret decodes an RFC 4648 base32 secret. Padding is optional and
// lower case letters are accepted.
func DecodeSecret(secret string) ([]byte, error) {
	secret = strings.ToUpper(strings.TrimSpace(secret))
	secret = strings.TrimRight(secret, "=")
	if secret == "" {
		return nil, ErrInvalidSecret
	}

	key, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(secret)
	if err != nil {
		return nil, errors.Join(ErrInvalidSecret, err)
	}

	return key, nil
}

// GenerateHOTP derives the code for counter keyed by key.
func GenerateHOTP(key []byte, counter uint64) string {
	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], counter)

	mac := hmac.New(sha1.New, key)
	mac.Write(msg[:])
	sum := mac.Sum(nil)

	// dynamic truncation
	offset := sum[len(sum)-1] & 0x0f
	bin := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff

	return leftPad(bin % modulo)
}

// Generate derives the code for step from a base32 encoded secret.
func Generate(secret string, step uint64) (string, error) {
	key, err := DecodeSecret(secret)
	if err != nil {
		return "", err
	}

	return GenerateHOTP(key, step), nil
}

// CheckCode reports whether code has the shape of a generated code.
func CheckCode(code string) error {
	if len(code) != Digits {
		return ErrMalformedCode
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return ErrMalformedCode
		}
	}
	return nil
}

func leftPad(v uint32) string {
	s := strconv.FormatUint(uint64(v), 10)
	if len(s) >= Digits {
		return s
	}
	return strings.Repeat("0", Digits-len(s)) + s
}
