package inbound

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/seedauth/internal/pkg/config"
	"github.com/shandysiswandi/seedauth/internal/pkg/goroutine"
	"github.com/shandysiswandi/seedauth/internal/pkg/instrument"
	"github.com/shandysiswandi/seedauth/internal/pkg/uid"
)

type ucJob interface {
	LogCode(ctx context.Context) error
}

const defaultCodeLogInterval = time.Minute

// RegisterCodeLogJob starts the periodic code log when
// twofa.code_log.enabled is set. The first entry is written right away.
func RegisterCodeLogJob(ctx context.Context, cfg config.Config, routine *goroutine.Manager, uuid uid.StringID, uc ucJob) {
	if !cfg.GetBool("twofa.code_log.enabled") {
		return
	}

	interval := cfg.GetSecond("twofa.code_log.interval_seconds")
	if interval <= 0 {
		interval = defaultCodeLogInterval
	}

	routine.Go(ctx, func(ctx context.Context) error {
		slog.InfoContext(ctx, "Running job for code log", "interval", interval.String())
		runCodeLog(ctx, interval, uuid, uc)
		return nil
	})
}

func runCodeLog(ctx context.Context, interval time.Duration, uuid uid.StringID, uc ucJob) {
	tick := func() {
		jobCtx := instrument.SetCorrelationID(ctx, uuid.Generate())
		if err := uc.LogCode(jobCtx); err != nil {
			slog.ErrorContext(jobCtx, "code log run failed", "error", err)
		}
	}

	tick()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tick()
		}
	}
}
