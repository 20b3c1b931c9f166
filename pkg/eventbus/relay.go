package eventbus

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/hireflow/hireflow/pkg/events"
)

// Relay republishes every lifecycle event to a watermill publisher so
// external audit and analytics consumers see the same stream the in-process
// handlers do. The relay is an ordinary subscriber: its failures never affect
// the workflow transition that produced the event.
type Relay struct {
	publisher message.Publisher
}

func NewRelay(publisher message.Publisher) *Relay {
	return &Relay{publisher: publisher}
}

// Attach registers the relay for every lifecycle event type.
func (r *Relay) Attach(bus EventBus) {
	eventTypes := []events.EventType{
		events.StageEnteredEvent,
		events.StageExitedEvent,
		events.CandidateAdvancedEvent,
		events.CandidateRejectedEvent,
		events.WorkflowCompletedEvent,
		events.ActionTriggeredEvent,
	}

	for _, eventType := range eventTypes {
		bus.Handle(eventType, r.publish)
	}
}

func (r *Relay) publish(_ context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := message.NewMessage("msg-"+watermill.NewULID(), payload)
	msg.Metadata.Set(events.EventTypeMetadataKey, string(event.GetType()))

	if keyed, ok := event.(interface{ PairKey() string }); ok {
		msg.Metadata.Set(events.EventKeyMetadataKey, keyed.PairKey())
	}

	return r.publisher.Publish(events.Topic, msg)
}

func (r *Relay) Close() error {
	return r.publisher.Close()
}
