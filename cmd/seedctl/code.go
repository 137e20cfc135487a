package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/shandysiswandi/seedauth/internal/pkg/instrument"
	"github.com/shandysiswandi/seedauth/internal/pkg/otp"
	"github.com/shandysiswandi/seedauth/internal/twofa/entity"
	"github.com/shandysiswandi/seedauth/internal/twofa/outbound/codelog"
	"github.com/shandysiswandi/seedauth/internal/twofa/outbound/seedstore"
)

// now is replaced by tests.
var now = time.Now

func runCode(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("code", flag.ContinueOnError)
	seedPath := fs.String("seed", "data/seed.txt", "seed file to read")
	outPath := fs.String("out", "cron/last_code.txt", "code log file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ins := instrument.NewNoop()

	sd, err := seedstore.NewFile(*seedPath, false, ins).Load(ctx)
	if errors.Is(err, entity.ErrSeedNotProvisioned) {
		fmt.Fprintln(stdout, "no seed yet, skipping")
		return nil
	}
	if err != nil {
		return err
	}

	at := now()
	code, err := otp.Generate(string(sd.Encoded()), otp.TimeStep(at))
	if err != nil {
		return err
	}

	line := entity.CodeLogLine(at, code)
	if err := codelog.NewFile(*outPath, ins).Write(ctx, line); err != nil {
		return err
	}

	fmt.Fprintln(stdout, line)
	return nil
}
