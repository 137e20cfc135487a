package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/shandysiswandi/seedauth/internal/pkg/instrument"
	"github.com/shandysiswandi/seedauth/internal/pkg/rsacrypto"
	"github.com/shandysiswandi/seedauth/internal/pkg/seed"
	"github.com/shandysiswandi/seedauth/internal/twofa/outbound/seedstore"
)

func runDecrypt(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("decrypt", flag.ContinueOnError)
	keyPath := fs.String("private-key", "student_private.pem", "RSA private key, path or inline PEM")
	inPath := fs.String("in", "encrypted_seed.txt", "base64 encrypted seed")
	seedPath := fs.String("seed", "data/seed.txt", "seed file to write")
	if err := fs.Parse(args); err != nil {
		return err
	}

	key, err := rsacrypto.ParsePrivateKey(*keyPath)
	if err != nil {
		return fmt.Errorf("load private key: %w", err)
	}

	// #nosec G304 -- path comes from a CLI flag.
	ciphertext, err := os.ReadFile(*inPath)
	if err != nil {
		return fmt.Errorf("read encrypted seed: %w", err)
	}

	sd, err := seed.Decrypt(key, string(ciphertext))
	if err != nil {
		return err
	}

	store := seedstore.NewFile(*seedPath, false, instrument.NewNoop())
	if err := store.Save(ctx, sd); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "seed stored in %s\n", *seedPath)
	return nil
}
