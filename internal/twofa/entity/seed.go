package entity

import (
	"errors"
	"fmt"
	"time"
)

var ErrSeedNotProvisioned = errors.New("twofa: seed not provisioned")

// SeedState is the lifecycle of the stored seed. There is no way back to
// SeedStateEmpty once a seed was accepted.
type SeedState int8

const (
	SeedStateEmpty SeedState = iota
	SeedStateProvisioned
)

func (s SeedState) String() string {
	if s == SeedStateProvisioned {
		return "provisioned"
	}
	return "empty"
}

// CodeLogTimeLayout is the UTC timestamp layout of a code log line.
const CodeLogTimeLayout = "2006-01-02 15:04:05"

// CodeLogLine formats one line of the code log, e.g.
// "2024-01-02 03:04:05 - 2FA Code: 123456".
func CodeLogLine(at time.Time, code string) string {
	return fmt.Sprintf("%s - 2FA Code: %s", at.UTC().Format(CodeLogTimeLayout), code)
}
