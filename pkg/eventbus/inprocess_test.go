package eventbus

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hireflow/hireflow/pkg/events"
	"github.com/hireflow/hireflow/pkg/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func advancedEvent(candidateID string) events.CandidateAdvanced {
	return events.CandidateAdvanced{
		BaseEvent: events.NewBaseEvent(events.CandidateAdvancedEvent, &models.WorkflowInstance{
			CandidateID: candidateID,
			JobID:       "job-1",
		}, "u1"),
		ToStageID: "interview",
	}
}

func TestHandlersRunInRegistrationOrder(t *testing.T) {
	bus := NewInProcessEventBus(testLogger())

	var order []string

	bus.Handle(events.CandidateAdvancedEvent, func(_ context.Context, _ Event) error {
		order = append(order, "first")

		return nil
	})
	bus.Handle(events.CandidateAdvancedEvent, func(_ context.Context, _ Event) error {
		order = append(order, "second")

		return nil
	})

	require.NoError(t, bus.Publish(context.Background(), advancedEvent("cand-1")))
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestEventsObservedInEmissionOrder(t *testing.T) {
	bus := NewInProcessEventBus(testLogger())

	var seen []string

	bus.Handle(events.CandidateAdvancedEvent, func(_ context.Context, event Event) error {
		advanced, ok := event.(events.CandidateAdvanced)
		require.True(t, ok)
		seen = append(seen, advanced.ID)

		return nil
	})

	first := advancedEvent("cand-1")
	second := advancedEvent("cand-1")
	third := advancedEvent("cand-1")

	ctx := context.Background()
	require.NoError(t, bus.Publish(ctx, first))
	require.NoError(t, bus.Publish(ctx, second))
	require.NoError(t, bus.Publish(ctx, third))

	assert.Equal(t, []string{first.ID, second.ID, third.ID}, seen)
}

func TestHandlerErrorDoesNotStopRemainingHandlers(t *testing.T) {
	bus := NewInProcessEventBus(testLogger())

	failure := errors.New("handler exploded")
	secondRan := false

	bus.Handle(events.CandidateAdvancedEvent, func(_ context.Context, _ Event) error {
		return failure
	})
	bus.Handle(events.CandidateAdvancedEvent, func(_ context.Context, _ Event) error {
		secondRan = true

		return nil
	})

	err := bus.Publish(context.Background(), advancedEvent("cand-1"))
	require.ErrorIs(t, err, failure)
	assert.True(t, secondRan)
}

func TestPublishWithNoHandlers(t *testing.T) {
	bus := NewInProcessEventBus(testLogger())

	assert.NoError(t, bus.Publish(context.Background(), advancedEvent("cand-1")))
}

func TestGenerateID(t *testing.T) {
	bus := NewInProcessEventBus(testLogger())

	first := bus.GenerateID()
	second := bus.GenerateID()

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}

func TestRelayRepublishesEvents(t *testing.T) {
	bus := NewInProcessEventBus(testLogger())

	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 10},
		watermill.NopLogger{},
	)

	messages, err := pubSub.Subscribe(context.Background(), events.Topic)
	require.NoError(t, err)

	relay := NewRelay(pubSub)
	relay.Attach(bus)

	event := advancedEvent("cand-9")
	require.NoError(t, bus.Publish(context.Background(), event))

	msg := <-messages
	msg.Ack()

	assert.Equal(t, string(events.CandidateAdvancedEvent), msg.Metadata.Get(events.EventTypeMetadataKey))
	assert.Equal(t, "cand-9:job-1", msg.Metadata.Get(events.EventKeyMetadataKey))
}
