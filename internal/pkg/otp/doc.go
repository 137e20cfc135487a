// Package otp implements HMAC-based (RFC 4226) and time-based (RFC 6238)
// one-time passwords with the fixed parameters this service agrees on with
// its clients: SHA-1, six digits and a thirty second step.
//
// Generation is a pure function of (secret, step). Verification walks a
// small window of adjacent steps to absorb clock drift between the server
// and the authenticator.
package otp
