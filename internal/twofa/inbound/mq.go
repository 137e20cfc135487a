package inbound

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/seedauth/internal/pkg/goroutine"
	"github.com/shandysiswandi/seedauth/internal/pkg/instrument"
	"github.com/shandysiswandi/seedauth/internal/pkg/messaging"
	"github.com/shandysiswandi/seedauth/internal/pkg/uid"
	"github.com/shandysiswandi/seedauth/internal/shared/event"
)

// RegisterMQConsumer subscribes this replica to seed.provisioned. No queue
// group is set: every replica must drop its own cached seed.
func RegisterMQConsumer(
	ctx context.Context,
	routine *goroutine.Manager,
	messenger messaging.Messaging,
	uuid uid.StringID,
	uc ucConsumer,
	ins instrument.Instrumentation,
) {
	mqHandler := &MQHandler{uc: uc, uuid: uuid, ins: ins}

	routine.Go(ctx, func(pCtx context.Context) error {
		slog.InfoContext(ctx, "Running job for handling consumer", "subject", event.SeedProvisionedDestination)
		err := messenger.Consume(pCtx,
			event.SeedProvisionedDestination,
			mqHandler.SeedProvisioned,
			messaging.WithAutoAck(true),
		)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
}
