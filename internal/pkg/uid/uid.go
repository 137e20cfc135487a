// Package uid generates identifiers for correlation IDs and event IDs.
package uid

// StringID generates unique string identifiers.
type StringID interface {
	Generate() string
}
