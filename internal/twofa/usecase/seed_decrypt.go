package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/seedauth/internal/pkg/goerror"
	"github.com/shandysiswandi/seedauth/internal/pkg/seed"
)

// msgDecryptionFailed is the only message a caller of DecryptSeed ever sees.
const msgDecryptionFailed = "Decryption failed"

type DecryptSeedInput struct {
	EncryptedSeed string `validate:"required"`
}

func (s *Usecase) DecryptSeed(ctx context.Context, in DecryptSeedInput) error {
	ctx, span := s.startSpan(ctx, "DecryptSeed")
	defer span.End()

	in.EncryptedSeed = strings.TrimSpace(in.EncryptedSeed)
	if err := s.validator.Validate(in); err != nil {
		slog.WarnContext(ctx, "encrypted seed is missing from request", "error", err)
		return goerror.NewServerMsg(seed.ErrDecryptionFailed, msgDecryptionFailed)
	}

	sd, err := seed.Decrypt(s.privateKey, in.EncryptedSeed)
	if err != nil {
		stage := "unknown"
		var derr *seed.DecryptError
		if errors.As(err, &derr) {
			stage = derr.Stage
		}
		slog.WarnContext(ctx, "failed to decrypt seed", "stage", stage, "error", errors.Unwrap(err))
		span.RecordError(err)
		return goerror.NewServerMsg(err, msgDecryptionFailed)
	}

	if err := s.repoSeed.Save(ctx, sd); err != nil {
		slog.ErrorContext(ctx, "failed to repo save seed", "error", err)
		span.RecordError(err)
		return goerror.NewServerMsg(err, msgDecryptionFailed)
	}

	ev := SeedProvisionedEvent{
		EventID:       s.uuid.Generate(),
		Fingerprint:   s.fingerprint(sd),
		ProvisionedAt: s.clock.Now().UTC(),
	}
	slog.InfoContext(ctx, "seed provisioned", "fingerprint", ev.Fingerprint, "event_id", ev.EventID)

	// The request is already answered when the event goes out.
	scheduled := s.goroutine.Go(context.WithoutCancel(ctx), func(ctx context.Context) error {
		if err := s.repoMessaging.PublishSeedProvisioned(ctx, ev); err != nil {
			slog.ErrorContext(ctx, "failed to publish seed provisioned", "event_id", ev.EventID, "error", err)
		}
		return nil
	})
	if !scheduled {
		slog.WarnContext(ctx, "seed provisioned event not scheduled", "event_id", ev.EventID)
	}

	return nil
}
