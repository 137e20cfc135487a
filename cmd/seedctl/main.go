// seedctl is the companion command line for a seedauth deployment.
//
// Usage:
//
//	seedctl keygen  [-bits 4096] [-private student_private.pem] [-public student_public.pem] [-public-format spki|pkcs1]
//	seedctl request -student-id ID -repo URL [-api URL] [-public student_public.pem] [-out encrypted_seed.txt]
//	seedctl decrypt [-private-key student_private.pem] [-in encrypted_seed.txt] [-seed data/seed.txt]
//	seedctl code    [-seed data/seed.txt] [-out cron/last_code.txt]
//	seedctl proof   [-private-key student_private.pem] [-instructor-key instructor_public.pem] [-commit HASH] [-out proof.txt]
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

var errUsage = errors.New("usage: seedctl <keygen|request|decrypt|code|proof> [flags]")

type command func(ctx context.Context, args []string, stdout io.Writer) error

var commands = map[string]command{
	"keygen":  runKeygen,
	"request": runRequest,
	"decrypt": runDecrypt,
	"code":    runCode,
	"proof":   runProof,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "seedctl:", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	cmd, ok := commands[args[0]]
	if !ok {
		return fmt.Errorf("unknown command %q\n%w", args[0], errUsage)
	}

	return cmd(ctx, args[1:], stdout)
}
