package config

import (
	"io"
	"time"
)

// Config is the read-only view of runtime configuration used across the service.
//
// Missing keys resolve to the zero value of the requested type unless a default
// was registered by the implementation.
type Config interface {
	io.Closer

	// GetBool returns the value for key as a bool.
	GetBool(key string) bool

	// GetString returns the value for key as a string.
	GetString(key string) string

	// GetInt returns the value for key as an int.
	GetInt(key string) int

	// GetUint returns the value for key as a uint.
	GetUint(key string) uint

	// GetFloat64 returns the value for key as a float64.
	GetFloat64(key string) float64

	// GetSecond interprets the value for key as a number of seconds.
	GetSecond(key string) time.Duration

	// GetBinary returns the base64 decoded value for key, or nil when it is not valid base64.
	GetBinary(key string) []byte

	// GetArray returns the value for key split on commas. Blank elements are dropped
	// and the rest are trimmed. A YAML sequence is accepted as well.
	GetArray(key string) []string
}
