package seed

import (
	"crypto/rsa"
	"encoding/base64"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/shandysiswandi/seedauth/internal/pkg/rsacrypto"
)

// ErrDecryptionFailed is the only error Decrypt reports to callers.
var ErrDecryptionFailed = errors.New("seed: decryption failed")

// DecryptError carries the concrete cause of a failed decryption. It matches
// ErrDecryptionFailed with errors.Is, so callers facing an untrusted party
// never need to look further; Cause is meant for internal logs.
type DecryptError struct {
	Stage string
	Cause error
}

func (e *DecryptError) Error() string {
	return ErrDecryptionFailed.Error()
}

// Is makes every DecryptError match ErrDecryptionFailed.
func (e *DecryptError) Is(target error) bool {
	return target == ErrDecryptionFailed
}

// Unwrap exposes the cause for errors.As on internal paths.
func (e *DecryptError) Unwrap() error {
	return e.Cause
}

func fail(stage string, cause error) error {
	return &DecryptError{Stage: stage, Cause: cause}
}

// Decrypt base64 decodes ciphertext, decrypts it with RSA-OAEP (SHA-256 for
// both the digest and MGF1), trims the plaintext and parses it as a Seed.
func Decrypt(key *rsa.PrivateKey, ciphertext string) (Seed, error) {
	if key == nil {
		return Seed{}, fail("key", rsacrypto.ErrInvalidKey)
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(ciphertext))
	if err != nil {
		return Seed{}, fail("base64", err)
	}
	if len(raw) == 0 {
		return Seed{}, fail("base64", errors.New("empty ciphertext"))
	}

	plain, err := rsacrypto.DecryptOAEP(key, raw)
	if err != nil {
		return Seed{}, fail("oaep", err)
	}
	if !utf8.Valid(plain) {
		return Seed{}, fail("utf8", errors.New("plaintext is not utf-8"))
	}

	s, err := Parse(strings.TrimSpace(string(plain)))
	if err != nil {
		return Seed{}, fail("format", err)
	}

	return s, nil
}
