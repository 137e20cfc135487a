package inbound

import (
	"log/slog"

	"github.com/shandysiswandi/seedauth/internal/pkg/goerror"
	"github.com/shandysiswandi/seedauth/internal/pkg/router"
	"github.com/shandysiswandi/seedauth/internal/pkg/seed"
	"github.com/shandysiswandi/seedauth/internal/twofa/usecase"
)

// HTTPEndpoint exposes HTTP handlers for seed provisioning and code checks.
type HTTPEndpoint struct {
	uc uc
}

// DecryptSeed accepts an RSA-OAEP encrypted seed and stores it.
// Every failure, including an unreadable body, is reported as the same
// generic decryption error.
func (h *HTTPEndpoint) DecryptSeed(r *router.Request) (any, error) {
	var req DecryptSeedRequest
	if err := r.DecodeBody(&req); err != nil {
		slog.WarnContext(r.Context(), "failed to decode decrypt seed body", "error", err)
		return nil, goerror.NewServerMsg(seed.ErrDecryptionFailed, "Decryption failed")
	}

	if err := h.uc.DecryptSeed(r.Context(), usecase.DecryptSeedInput{
		EncryptedSeed: req.EncryptedSeed,
	}); err != nil {
		return nil, err
	}

	return DecryptSeedResponse{Status: "ok"}, nil
}

// GenerateCode returns the current code and the seconds left in its step.
func (h *HTTPEndpoint) GenerateCode(r *router.Request) (any, error) {
	resp, err := h.uc.GenerateCode(r.Context())
	if err != nil {
		return nil, err
	}

	return GenerateCodeResponse{Code: resp.Code, ValidFor: resp.ValidFor}, nil
}

func (h *HTTPEndpoint) VerifyCode(r *router.Request) (any, error) {
	var req VerifyCodeRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.VerifyCode(r.Context(), usecase.VerifyCodeInput{Code: string(req.Code)})
	if err != nil {
		return nil, err
	}

	return VerifyCodeResponse{Valid: resp.Valid}, nil
}

func (h *HTTPEndpoint) Health(r *router.Request) (any, error) {
	resp, err := h.uc.Health(r.Context())
	if err != nil {
		return nil, err
	}

	return HealthResponse{Status: "ok", Seed: resp.Seed.String()}, nil
}
