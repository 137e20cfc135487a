package inbound

import (
	"context"

	"github.com/shandysiswandi/seedauth/internal/pkg/router"
	"github.com/shandysiswandi/seedauth/internal/twofa/usecase"
)

type uc interface {
	DecryptSeed(ctx context.Context, in usecase.DecryptSeedInput) error
	GenerateCode(ctx context.Context) (*usecase.GenerateCodeOutput, error)
	VerifyCode(ctx context.Context, in usecase.VerifyCodeInput) (*usecase.VerifyCodeOutput, error)
	Health(ctx context.Context) (*usecase.HealthOutput, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.POST("/decrypt-seed", end.DecryptSeed)
	r.GET("/generate-2fa", end.GenerateCode)
	r.POST("/verify-2fa", end.VerifyCode)

	r.GET("/health", end.Health)
}
