package rsacrypto

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
)

// DefaultBits is the modulus size used when none is requested.
const DefaultBits = 4096

// PublicFormat selects the PEM encoding of an exported public key.
type PublicFormat string

const (
	// PublicFormatSPKI encodes a "PUBLIC KEY" block.
	PublicFormatSPKI PublicFormat = "spki"
	// PublicFormatPKCS1 encodes an "RSA PUBLIC KEY" block.
	PublicFormatPKCS1 PublicFormat = "pkcs1"
)

// ErrUnknownFormat is returned for an unsupported public key format.
var ErrUnknownFormat = errors.New("rsacrypto: unknown public key format")

// GenerateKey creates an RSA key with exponent 65537.
func GenerateKey(bits int) (*rsa.PrivateKey, error) {
	if bits <= 0 {
		bits = DefaultBits
	}
	if bits < 2048 {
		return nil, fmt.Errorf("rsacrypto: key size %d is below 2048 bits", bits)
	}
	return rsa.GenerateKey(rand.Reader, bits)
}

// EncodePrivateKeyPEM encodes key as a PKCS#1 "RSA PRIVATE KEY" block.
func EncodePrivateKeyPEM(key *rsa.PrivateKey) []byte {
	return pem.EncodeToMemory(&pem.Block{
		Type:  blockPKCS1Private,
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
}

// EncodePublicKeyPEM encodes key in the requested format.
func EncodePublicKeyPEM(key *rsa.PublicKey, format PublicFormat) ([]byte, error) {
	switch format {
	case PublicFormatPKCS1:
		return pem.EncodeToMemory(&pem.Block{
			Type:  blockPKCS1Public,
			Bytes: x509.MarshalPKCS1PublicKey(key),
		}), nil
	case PublicFormatSPKI, "":
		der, err := x509.MarshalPKIXPublicKey(key)
		if err != nil {
			return nil, err
		}
		return pem.EncodeToMemory(&pem.Block{Type: blockSPKIPublic, Bytes: der}), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}
