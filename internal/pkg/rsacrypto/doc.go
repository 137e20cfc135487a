// Package rsacrypto loads RSA key material from PEM and wraps the padding
// schemes the seed exchange relies on: OAEP with SHA-256 for encryption and
// PSS with SHA-256 for signatures.
package rsacrypto
