package inbound

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shandysiswandi/seedauth/internal/pkg/goroutine"
	"github.com/shandysiswandi/seedauth/internal/pkg/instrument"
	"github.com/shandysiswandi/seedauth/internal/pkg/messaging"
	"github.com/shandysiswandi/seedauth/internal/shared/event"
	"github.com/shandysiswandi/seedauth/internal/twofa/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedID string

func (f fixedID) Generate() string { return string(f) }

type fakeConsumer struct {
	got    chan reloadCall
	err    error
	called int
}

type reloadCall struct {
	in  usecase.ReloadSeedInput
	cID string
}

func (f *fakeConsumer) ReloadSeed(ctx context.Context, in usecase.ReloadSeedInput) error {
	f.called++
	if f.got != nil {
		f.got <- reloadCall{in: in, cID: instrument.GetCorrelationID(ctx)}
	}
	return f.err
}

type testMessage struct {
	body    []byte
	headers []messaging.Header
}

func (m testMessage) Body() []byte                { return m.body }
func (m testMessage) Headers() []messaging.Header { return m.headers }
func (testMessage) Subject() string               { return event.SeedProvisionedDestination }
func (testMessage) Timestamp() time.Time          { return time.Time{} }
func (testMessage) Ack(context.Context) error     { return nil }

func TestMQHandler_SeedProvisioned(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Arrange
		uc := &fakeConsumer{got: make(chan reloadCall, 1)}
		h := &MQHandler{uc: uc, uuid: fixedID("generated"), ins: instrument.NewNoop()}
		body, err := json.Marshal(event.SeedProvisionedMessage{EventID: "e1", Fingerprint: "fp"})
		require.NoError(t, err)

		// Act
		err = h.SeedProvisioned(context.Background(), testMessage{
			body:    body,
			headers: []messaging.Header{{Key: keyOfCorrelationID, Value: []byte("cid-from-publisher")}},
		})

		// Assert
		require.NoError(t, err)
		call := <-uc.got
		assert.Equal(t, usecase.ReloadSeedInput{EventID: "e1", Fingerprint: "fp"}, call.in)
		assert.Equal(t, "cid-from-publisher", call.cID)
	})

	t.Run("GeneratesCorrelationID", func(t *testing.T) {
		// Arrange
		uc := &fakeConsumer{got: make(chan reloadCall, 1)}
		h := &MQHandler{uc: uc, uuid: fixedID("generated"), ins: instrument.NewNoop()}

		// Act
		err := h.SeedProvisioned(context.Background(), testMessage{body: []byte(`{"event_id":"e1"}`)})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "generated", (<-uc.got).cID)
	})

	t.Run("MalformedBodyIsDropped", func(t *testing.T) {
		// Arrange
		uc := &fakeConsumer{}
		h := &MQHandler{uc: uc, uuid: fixedID("generated"), ins: instrument.NewNoop()}

		// Act
		err := h.SeedProvisioned(context.Background(), testMessage{body: []byte(`not json`)})

		// Assert
		require.NoError(t, err)
		assert.Zero(t, uc.called)
	})

	t.Run("UsecaseFailure", func(t *testing.T) {
		// Arrange
		uc := &fakeConsumer{err: errors.New("store down")}
		h := &MQHandler{uc: uc, uuid: fixedID("generated"), ins: instrument.NewNoop()}

		// Act
		err := h.SeedProvisioned(context.Background(), testMessage{body: []byte(`{}`)})

		// Assert
		assert.ErrorIs(t, err, uc.err)
	})
}

func TestRegisterMQConsumer_BroadcastsToEveryReplica(t *testing.T) {
	broker := messaging.NewMemory()
	t.Cleanup(func() { _ = broker.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	routine := goroutine.NewManager(4)

	replicaA := &fakeConsumer{got: make(chan reloadCall, 1)}
	replicaB := &fakeConsumer{got: make(chan reloadCall, 1)}
	RegisterMQConsumer(ctx, routine, broker, fixedID("cid"), replicaA, instrument.NewNoop())
	RegisterMQConsumer(ctx, routine, broker, fixedID("cid"), replicaB, instrument.NewNoop())

	require.Eventually(t, func() bool {
		return broker.Subscribers(event.SeedProvisionedDestination) == 2
	}, time.Second, 5*time.Millisecond)

	_, err := broker.Publish(context.Background(), event.SeedProvisionedDestination, messaging.OutgoingMessage{
		Body: []byte(`{"event_id":"e1","fingerprint":"fp"}`),
	})
	require.NoError(t, err)

	for _, replica := range []*fakeConsumer{replicaA, replicaB} {
		select {
		case call := <-replica.got:
			assert.Equal(t, "e1", call.in.EventID)
		case <-time.After(time.Second):
			t.Fatal("replica did not receive seed.provisioned")
		}
	}

	cancel()
	require.NoError(t, routine.Wait())
}
