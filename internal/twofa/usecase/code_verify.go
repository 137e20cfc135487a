package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/seedauth/internal/pkg/goerror"
	"github.com/shandysiswandi/seedauth/internal/twofa/entity"
)

type VerifyCodeInput struct {
	Code string `validate:"required"`
}

type VerifyCodeOutput struct {
	Valid bool
}

// VerifyCode checks a submitted code against the stored seed within the
// configured window. A code of the wrong shape is simply not valid.
func (s *Usecase) VerifyCode(ctx context.Context, in VerifyCodeInput) (*VerifyCodeOutput, error) {
	ctx, span := s.startSpan(ctx, "VerifyCode")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewBusiness("Missing code", goerror.CodeInvalidFormat)
	}

	sd, ok, err := s.loadSeed(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo load seed", "error", err)
		return nil, goerror.NewServer(err)
	}
	if !ok {
		slog.WarnContext(ctx, "code verification requested before a seed was provisioned")
		return nil, goerror.NewServerMsg(entity.ErrSeedNotProvisioned, "Seed not found")
	}

	valid := s.totp.Validate(in.Code, string(sd.Encoded()), s.clock.Now())
	if !valid {
		slog.InfoContext(ctx, "code rejected")
	}

	return &VerifyCodeOutput{Valid: valid}, nil
}
