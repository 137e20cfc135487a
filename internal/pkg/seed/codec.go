package seed

import (
	"encoding/base32"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// HexLength is the number of hexadecimal characters in a seed.
const HexLength = 64

// ErrInvalidFormat is returned when a string is not exactly 64 hex characters.
var ErrInvalidFormat = errors.New("seed: expected 64 hexadecimal characters")

var reSeed = regexp.MustCompile(fmt.Sprintf(`^[0-9a-fA-F]{%d}$`, HexLength))

// Seed is a validated 256-bit secret. The zero value is not a valid seed.
type Seed struct {
	hex string
}

// EncodedSecret is the RFC 4648 base32 form of a Seed consumed by the otp package.
type EncodedSecret string

// Parse validates s and returns its Seed. Upper and lower case digits are
// accepted; the canonical form is lower case.
func Parse(s string) (Seed, error) {
	if !reSeed.MatchString(s) {
		return Seed{}, ErrInvalidFormat
	}

	return Seed{hex: strings.ToLower(s)}, nil
}

// String returns the canonical lower case hex representation.
func (s Seed) String() string {
	return s.hex
}

// IsZero reports whether s was not produced by Parse.
func (s Seed) IsZero() bool {
	return s.hex == ""
}

// Bytes returns the 32 raw bytes of the seed.
func (s Seed) Bytes() []byte {
	//nolint:errcheck // hex was validated by Parse
	b, _ := hex.DecodeString(s.hex)
	return b
}

// Encoded returns the base32 secret derived from s.
func (s Seed) Encoded() EncodedSecret {
	return Encode(s)
}

// Encode maps the seed bytes to standard base32 with padding.
func Encode(s Seed) EncodedSecret {
	return EncodedSecret(base32.StdEncoding.EncodeToString(s.Bytes()))
}
