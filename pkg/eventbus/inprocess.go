package eventbus

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/hireflow/hireflow/pkg/events"
)

// InProcessEventBus dispatches events synchronously within the publishing
// goroutine. Handlers for one event type run in registration order, so events
// emitted in sequence for the same (candidate, job) pair are observed in
// emission order. A handler error is logged and does not stop the remaining
// handlers; the joined error is returned to the publisher for logging.
type InProcessEventBus struct {
	mu       sync.RWMutex
	handlers map[events.EventType][]EventHandler
	logger   *slog.Logger
}

func NewInProcessEventBus(logger *slog.Logger) *InProcessEventBus {
	return &InProcessEventBus{
		handlers: make(map[events.EventType][]EventHandler),
		logger:   logger.With("module", "eventbus"),
	}
}

func (eb *InProcessEventBus) GenerateID() string {
	return watermill.NewULID()
}

func (eb *InProcessEventBus) Handle(eventType events.EventType, handler EventHandler) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.handlers[eventType] = append(eb.handlers[eventType], handler)
}

func (eb *InProcessEventBus) Publish(ctx context.Context, event Event) error {
	eb.mu.RLock()
	handlers := make([]EventHandler, len(eb.handlers[event.GetType()]))
	copy(handlers, eb.handlers[event.GetType()])
	eb.mu.RUnlock()

	var errs []error

	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			eb.logger.ErrorContext(ctx, "Event handler failed",
				"event_type", event.GetType(),
				"error", err,
			)
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (eb *InProcessEventBus) Close() error {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.handlers = make(map[events.EventType][]EventHandler)

	return nil
}
