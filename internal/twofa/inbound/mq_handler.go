package inbound

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/shandysiswandi/seedauth/internal/pkg/instrument"
	"github.com/shandysiswandi/seedauth/internal/pkg/messaging"
	"github.com/shandysiswandi/seedauth/internal/pkg/uid"
	"github.com/shandysiswandi/seedauth/internal/shared/event"
	"github.com/shandysiswandi/seedauth/internal/twofa/usecase"
)

const keyOfCorrelationID string = "cID"

type ucConsumer interface {
	ReloadSeed(ctx context.Context, in usecase.ReloadSeedInput) error
}

type MQHandler struct {
	uc   ucConsumer
	uuid uid.StringID
	ins  instrument.Instrumentation
}

func (h *MQHandler) ensureCorrelationID(ctx context.Context, headers []messaging.Header) context.Context {
	if cID, ok := messaging.HeaderValue(headers, keyOfCorrelationID); ok && cID != "" {
		return instrument.SetCorrelationID(ctx, cID)
	}
	return instrument.SetCorrelationID(ctx, h.uuid.Generate())
}

func (h *MQHandler) SeedProvisioned(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg.Headers())

	ctx, span := h.ins.Tracer("twofa.inbound.mq").Start(ctx, "SeedProvisioned")
	defer span.End()

	body := msg.Body()
	slog.InfoContext(ctx, "consume: seed provisioned", "msg_body", string(body))

	var payload event.SeedProvisionedMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of seed provisioned", "msg_body", string(body), "error", err)
		return nil
	}

	if err := h.uc.ReloadSeed(ctx, usecase.ReloadSeedInput{
		EventID:     payload.EventID,
		Fingerprint: payload.Fingerprint,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume seed provisioned", "event_id", payload.EventID, "error", err)
		return err
	}

	return nil
}
