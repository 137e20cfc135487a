package usecase

import (
	"context"
	"log/slog"
)

type ReloadSeedInput struct {
	EventID     string
	Fingerprint string
}

// ReloadSeed drops the cached seed after another replica stored a new one
// and checks that the shared store now holds the announced seed.
func (s *Usecase) ReloadSeed(ctx context.Context, in ReloadSeedInput) error {
	ctx, span := s.startSpan(ctx, "ReloadSeed")
	defer span.End()

	s.repoSeed.Invalidate(ctx)

	sd, ok, err := s.loadSeed(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo load seed after invalidation", "event_id", in.EventID, "error", err)
		return err
	}
	if !ok {
		slog.WarnContext(ctx, "seed announced but not visible in store", "event_id", in.EventID)
		return nil
	}

	if in.Fingerprint != "" && !s.hmac.Verify(in.Fingerprint, sd.String()) {
		slog.WarnContext(ctx, "stored seed does not match announced fingerprint", "event_id", in.EventID,
			"announced", in.Fingerprint, "stored", s.fingerprint(sd))
		return nil
	}

	slog.InfoContext(ctx, "seed reloaded", "event_id", in.EventID, "fingerprint", in.Fingerprint)
	return nil
}
