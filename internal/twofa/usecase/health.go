package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/seedauth/internal/pkg/goerror"
	"github.com/shandysiswandi/seedauth/internal/twofa/entity"
)

type HealthOutput struct {
	Seed entity.SeedState
}

func (s *Usecase) Health(ctx context.Context) (*HealthOutput, error) {
	ctx, span := s.startSpan(ctx, "Health")
	defer span.End()

	_, ok, err := s.loadSeed(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo load seed", "error", err)
		return nil, goerror.NewServer(err)
	}

	if ok {
		return &HealthOutput{Seed: entity.SeedStateProvisioned}, nil
	}
	return &HealthOutput{Seed: entity.SeedStateEmpty}, nil
}
