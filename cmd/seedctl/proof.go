package main

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"flag"
	"fmt"
	"io"
	"os/exec"
	"regexp"
	"strings"

	"github.com/shandysiswandi/seedauth/internal/pkg/atomicfile"
	"github.com/shandysiswandi/seedauth/internal/pkg/rsacrypto"
)

var reCommitHash = regexp.MustCompile(`^[0-9a-f]{40}$`)

func runProof(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("proof", flag.ContinueOnError)
	keyPath := fs.String("private-key", "student_private.pem", "signing key, path or inline PEM")
	instructorPath := fs.String("instructor-key", "instructor_public.pem", "instructor public key, path or inline PEM")
	commit := fs.String("commit", "", "commit hash to sign, defaults to git HEAD")
	outPath := fs.String("out", "proof.txt", "where to save the proof, empty to skip")
	if err := fs.Parse(args); err != nil {
		return err
	}

	hash := strings.TrimSpace(*commit)
	if hash == "" {
		var err error
		if hash, err = headCommit(ctx); err != nil {
			return err
		}
	}
	if !reCommitHash.MatchString(hash) {
		return fmt.Errorf("invalid commit hash %q", hash)
	}

	key, err := rsacrypto.ParsePrivateKey(*keyPath)
	if err != nil {
		return fmt.Errorf("load private key: %w", err)
	}
	instructor, err := rsacrypto.ParsePublicKey(*instructorPath)
	if err != nil {
		return fmt.Errorf("load instructor key: %w", err)
	}

	proof, err := buildProof(key, instructor, hash)
	if err != nil {
		return err
	}

	if *outPath != "" {
		if err := atomicfile.Write(*outPath, []byte(proof), 0o644); err != nil {
			return fmt.Errorf("write proof: %w", err)
		}
	}

	fmt.Fprintf(stdout, "commit %s\n%s\n", hash, proof)
	return nil
}

func buildProof(key *rsa.PrivateKey, instructor *rsa.PublicKey, hash string) (string, error) {
	sig, err := rsacrypto.SignPSS(key, []byte(hash))
	if err != nil {
		return "", fmt.Errorf("sign commit: %w", err)
	}

	ct, err := rsacrypto.EncryptOAEP(instructor, sig)
	if err != nil {
		return "", fmt.Errorf("encrypt signature: %w", err)
	}

	return base64.StdEncoding.EncodeToString(ct), nil
}

func headCommit(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, "git", "log", "-1", "--format=%H").Output()
	if err != nil {
		return "", fmt.Errorf("git log: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}
