package otp

import (
	"time"
)

// OTP defines the contract for TOTP operations.
type OTP interface {
	// Validate checks whether a code is valid at the given time using the configured window.
	Validate(code, secret string, at time.Time) bool
	// GenerateCode creates a TOTP code for the given secret and time.
	GenerateCode(secret string, at time.Time) (string, error)
}

// TOTP implements OTP on top of GenerateHOTP with a fixed 30 second step.
type TOTP struct {
	window uint
}

// NewTOTP constructs a TOTP that accepts window steps on either side of the
// current one. A window of zero only accepts the current step.
func NewTOTP(window uint) *TOTP {
	return &TOTP{window: window}
}

// Window returns the configured tolerance in steps.
func (o *TOTP) Window() uint {
	return o.window
}

// TimeStep returns floor(unix seconds / Period). Instants before the Unix
// epoch map to step zero.
func TimeStep(at time.Time) uint64 {
	sec := at.Unix()
	if sec < 0 {
		return 0
	}
	return uint64(sec) / Period
}

// ValidFor returns the number of seconds until the step containing at ends.
func ValidFor(at time.Time) int {
	sec := at.Unix() % Period
	if sec < 0 {
		sec += Period
	}
	return Period - int(sec)
}

// GenerateCode creates a TOTP code for the given secret and time.
func (o *TOTP) GenerateCode(secret string, at time.Time) (string, error) {
	return Generate(secret, TimeStep(at))
}

// Validate checks whether a code is valid at the given time.
func (o *TOTP) Validate(code, secret string, at time.Time) bool {
	return o.Verify(secret, code, at, o.window)
}

// Verify reports whether code matches any step in [step-window, step+window].
// A malformed code or an undecodable secret is a failed verification.
func (o *TOTP) Verify(secret, code string, at time.Time, window uint) bool {
	if CheckCode(code) != nil {
		return false
	}

	key, err := DecodeSecret(secret)
	if err != nil {
		return false
	}

	current := TimeStep(at)
	w := uint64(window)

	first := uint64(0)
	if current > w {
		first = current - w
	}
	for step := first; step <= current+w; step++ {
		if GenerateHOTP(key, step) == code {
			return true
		}
	}

	return false
}
