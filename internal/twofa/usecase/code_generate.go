package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/seedauth/internal/pkg/goerror"
	"github.com/shandysiswandi/seedauth/internal/pkg/otp"
	"github.com/shandysiswandi/seedauth/internal/twofa/entity"
)

type GenerateCodeOutput struct {
	Code     string
	ValidFor int
}

func (s *Usecase) GenerateCode(ctx context.Context) (*GenerateCodeOutput, error) {
	ctx, span := s.startSpan(ctx, "GenerateCode")
	defer span.End()

	sd, ok, err := s.loadSeed(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo load seed", "error", err)
		return nil, goerror.NewServer(err)
	}
	if !ok {
		slog.WarnContext(ctx, "code requested before a seed was provisioned")
		return nil, goerror.NewServerMsg(entity.ErrSeedNotProvisioned, "Seed not decrypted yet")
	}

	now := s.clock.Now()
	code, err := s.totp.GenerateCode(string(sd.Encoded()), now)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate code", "error", err)
		return nil, goerror.NewServer(err)
	}

	return &GenerateCodeOutput{Code: code, ValidFor: otp.ValidFor(now)}, nil
}
