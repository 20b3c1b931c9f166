// Package eventbus provides the typed publish/dispatch surface wiring the
// workflow instance manager to its event handlers.
package eventbus

import (
	"context"

	"github.com/hireflow/hireflow/pkg/events"
)

// Event is any workflow lifecycle event.
type Event interface {
	GetType() events.EventType
}

// EventHandler consumes one event. Handlers must not perform long-blocking
// external calls directly; they enqueue jobs and return.
type EventHandler func(ctx context.Context, event Event) error

// EventBus dispatches lifecycle events to registered handlers. A bus instance
// is constructed once per process and passed by dependency injection; there is
// no package-level singleton.
type EventBus interface {
	// Publish dispatches the event to every handler registered for its type.
	Publish(ctx context.Context, event Event) error
	// Handle registers a handler for the given event type. Handlers for one
	// type run in registration order.
	Handle(eventType events.EventType, handler EventHandler)
	Close() error
	GenerateID() string
}
