package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/seedauth/internal/twofa/entity"
)

// LogCode writes the current code to the code log. Without a seed there is
// nothing to log and the run is skipped.
func (s *Usecase) LogCode(ctx context.Context) error {
	ctx, span := s.startSpan(ctx, "LogCode")
	defer span.End()

	sd, ok, err := s.loadSeed(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo load seed", "error", err)
		return err
	}
	if !ok {
		slog.WarnContext(ctx, "seed not provisioned, skipping code log")
		return nil
	}

	now := s.clock.Now().UTC()
	code, err := s.totp.GenerateCode(string(sd.Encoded()), now)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate code", "error", err)
		return err
	}

	if err := s.repoCodeLog.Write(ctx, entity.CodeLogLine(now, code)); err != nil {
		slog.ErrorContext(ctx, "failed to repo write code log", "error", err)
		return err
	}

	return nil
}
