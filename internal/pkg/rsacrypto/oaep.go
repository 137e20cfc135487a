package rsacrypto

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
)

// DecryptOAEP decrypts ciphertext with RSA-OAEP using SHA-256 as both the
// label digest and the MGF1 hash, and an empty label.
func DecryptOAEP(key *rsa.PrivateKey, ciphertext []byte) ([]byte, error) {
	return rsa.DecryptOAEP(sha256.New(), nil, key, ciphertext, nil)
}

// EncryptOAEP is the inverse of DecryptOAEP.
func EncryptOAEP(key *rsa.PublicKey, plaintext []byte) ([]byte, error) {
	return rsa.EncryptOAEP(sha256.New(), rand.Reader, key, plaintext, nil)
}
