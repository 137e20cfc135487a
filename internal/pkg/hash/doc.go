// Package hash provides keyed hashing behind a small interface.
//
// The seed service never logs or publishes a seed; it publishes an HMAC of the
// seed instead, which lets replicas and operators compare seeds without
// learning them.
package hash
