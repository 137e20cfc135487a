package rsacrypto

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"os"
	"strings"
)

const (
	blockPKCS1Private = "RSA PRIVATE KEY"
	blockPKCS8Private = "PRIVATE KEY"
	blockPKCS1Public  = "RSA PUBLIC KEY"
	blockSPKIPublic   = "PUBLIC KEY"
)

// ErrInvalidKey is returned when PEM content or key type is not a usable RSA key.
var ErrInvalidKey = errors.New("rsacrypto: invalid key")

// LoadPEM returns s when it already looks like inline PEM, otherwise it reads
// the file at path s. Literal "\n" sequences in inline PEM are expanded so
// keys can be passed through environment variables.
func LoadPEM(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrInvalidKey
	}
	if strings.HasPrefix(s, "-----BEGIN") {
		return []byte(strings.ReplaceAll(s, `\n`, "\n")), nil
	}

	// #nosec G304 -- path comes from trusted configuration or CLI flags.
	return os.ReadFile(s)
}

// ParsePrivateKey parses a PKCS#1 or PKCS#8 RSA private key. s may be inline PEM or a file path.
func ParsePrivateKey(s string) (*rsa.PrivateKey, error) {
	pemBytes, err := LoadPEM(s)
	if err != nil {
		return nil, err
	}
	return ParsePrivateKeyPEM(pemBytes)
}

// ParsePrivateKeyPEM parses a PKCS#1 or PKCS#8 RSA private key from PEM bytes.
func ParsePrivateKeyPEM(pemBytes []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, ErrInvalidKey
	}

	switch block.Type {
	case blockPKCS1Private:
		return x509.ParsePKCS1PrivateKey(block.Bytes)
	case blockPKCS8Private:
		key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, err
		}
		rsaKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, ErrInvalidKey
		}
		return rsaKey, nil
	default:
		return nil, ErrInvalidKey
	}
}

// ParsePublicKey parses a PKCS#1 or SPKI RSA public key. s may be inline PEM or a file path.
func ParsePublicKey(s string) (*rsa.PublicKey, error) {
	pemBytes, err := LoadPEM(s)
	if err != nil {
		return nil, err
	}
	return ParsePublicKeyPEM(pemBytes)
}

// ParsePublicKeyPEM parses a PKCS#1 or SPKI RSA public key from PEM bytes.
func ParsePublicKeyPEM(pemBytes []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, ErrInvalidKey
	}

	switch block.Type {
	case blockPKCS1Public:
		return x509.ParsePKCS1PublicKey(block.Bytes)
	case blockSPKIPublic:
		key, err := x509.ParsePKIXPublicKey(block.Bytes)
		if err != nil {
			return nil, err
		}
		rsaKey, ok := key.(*rsa.PublicKey)
		if !ok {
			return nil, ErrInvalidKey
		}
		return rsaKey, nil
	default:
		return nil, ErrInvalidKey
	}
}
