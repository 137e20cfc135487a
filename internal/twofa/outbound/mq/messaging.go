package mq

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/shandysiswandi/seedauth/internal/pkg/instrument"
	"github.com/shandysiswandi/seedauth/internal/pkg/messaging"
	"github.com/shandysiswandi/seedauth/internal/shared/event"
	"github.com/shandysiswandi/seedauth/internal/twofa/usecase"
	"go.opentelemetry.io/otel/codes"
)

const keyOfCorrelationID string = "cID"

const (
	publishBaseDelay  = 200 * time.Millisecond
	publishMaxDelay   = 5 * time.Second
	publishMaxRetries = 5
)

type Messaging struct {
	client  messaging.Messaging
	ins     instrument.Instrumentation
	backoff func() retry.Backoff
}

func NewMessaging(client messaging.Messaging, ins instrument.Instrumentation) *Messaging {
	return &Messaging{
		client: client,
		ins:    ins,
		backoff: func() retry.Backoff {
			b := retry.NewFibonacci(publishBaseDelay)
			b = retry.WithCappedDuration(publishMaxDelay, b)
			return retry.WithMaxRetries(publishMaxRetries, b)
		},
	}
}

func (m *Messaging) PublishSeedProvisioned(ctx context.Context, msg usecase.SeedProvisionedEvent) error {
	ctx, span := m.ins.Tracer("twofa.outbound.mq").Start(ctx, "PublishSeedProvisioned")
	defer span.End()

	body, err := json.Marshal(event.SeedProvisionedMessage{
		EventID:       msg.EventID,
		Fingerprint:   msg.Fingerprint,
		ProvisionedAt: msg.ProvisionedAt,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	cID := instrument.GetCorrelationID(ctx)
	out := messaging.OutgoingMessage{
		Body:    body,
		Headers: []messaging.Header{{Key: keyOfCorrelationID, Value: []byte(cID)}},
	}

	attempt := 0
	err = retry.Do(ctx, m.backoff(), func(ctx context.Context) error {
		attempt++
		_, err := m.client.Publish(ctx, event.SeedProvisionedDestination, out)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, messaging.ErrClosed), errors.Is(err, messaging.ErrUnsupported):
			return err
		default:
			slog.WarnContext(ctx, "publish seed provisioned failed, retrying", "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
