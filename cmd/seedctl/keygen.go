package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/shandysiswandi/seedauth/internal/pkg/atomicfile"
	"github.com/shandysiswandi/seedauth/internal/pkg/rsacrypto"
)

func runKeygen(_ context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("keygen", flag.ContinueOnError)
	bits := fs.Int("bits", rsacrypto.DefaultBits, "RSA modulus size in bits")
	privPath := fs.String("private", "student_private.pem", "output path of the private key")
	pubPath := fs.String("public", "student_public.pem", "output path of the public key")
	pubFormat := fs.String("public-format", string(rsacrypto.PublicFormatSPKI), "public key encoding: spki or pkcs1")
	if err := fs.Parse(args); err != nil {
		return err
	}

	key, err := rsacrypto.GenerateKey(*bits)
	if err != nil {
		return err
	}

	pubPEM, err := rsacrypto.EncodePublicKeyPEM(&key.PublicKey, rsacrypto.PublicFormat(*pubFormat))
	if err != nil {
		return err
	}

	if err := atomicfile.Write(*privPath, rsacrypto.EncodePrivateKeyPEM(key), 0o600); err != nil {
		return fmt.Errorf("write private key: %w", err)
	}
	if err := atomicfile.Write(*pubPath, pubPEM, 0o644); err != nil {
		return fmt.Errorf("write public key: %w", err)
	}

	fmt.Fprintf(stdout, "created %s\ncreated %s\n", *privPath, *pubPath)
	return nil
}
