package rsacrypto

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
)

// SignPSS signs SHA-256(msg) with RSA-PSS using the largest salt the key allows.
func SignPSS(key *rsa.PrivateKey, msg []byte) ([]byte, error) {
	digest := sha256.Sum256(msg)
	return rsa.SignPSS(rand.Reader, key, crypto.SHA256, digest[:], &rsa.PSSOptions{
		SaltLength: rsa.PSSSaltLengthAuto,
	})
}

// VerifyPSS checks a signature produced by SignPSS.
func VerifyPSS(key *rsa.PublicKey, msg, sig []byte) error {
	digest := sha256.Sum256(msg)
	return rsa.VerifyPSS(key, crypto.SHA256, digest[:], sig, &rsa.PSSOptions{
		SaltLength: rsa.PSSSaltLengthAuto,
	})
}
