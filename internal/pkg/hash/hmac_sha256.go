package hash

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// HMACSHA256 implements Hash with HMAC-SHA256 under a fixed key.
type HMACSHA256 struct {
	key []byte
}

// NewHMACSHA256 creates a hasher keyed by key.
func NewHMACSHA256(key []byte) *HMACSHA256 {
	return &HMACSHA256{key: append([]byte(nil), key...)}
}

// Hash returns the lower case hex HMAC of str.
func (s *HMACSHA256) Hash(str string) ([]byte, error) {
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(str))

	sum := mac.Sum(nil)
	out := make([]byte, hex.EncodedLen(len(sum)))
	hex.Encode(out, sum)
	return out, nil
}

// Verify reports whether hashed is the HMAC of str, in constant time.
func (s *HMACSHA256) Verify(hashed, str string) bool {
	expected, _ := s.Hash(str)
	return hmac.Equal([]byte(hashed), expected)
}
