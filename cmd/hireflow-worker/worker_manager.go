package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/hireflow/hireflow/pkg/clients"
	"github.com/hireflow/hireflow/pkg/cmd"
	"github.com/hireflow/hireflow/pkg/eventbus"
	"github.com/hireflow/hireflow/pkg/persistence"
	"github.com/hireflow/hireflow/pkg/queue"
	"github.com/hireflow/hireflow/pkg/workflow"
)

// WorkerManager wires the full engine: the event bus with its handlers, the
// workflow manager, the processor registry, and the queue dispatcher with its
// janitor. It runs until SIGINT or SIGTERM and drains in-flight jobs on
// shutdown.
type WorkerManager struct {
	id          string
	logger      *slog.Logger
	persistence persistence.Persistence
	dispatcher  *queue.Dispatcher
	relay       *eventbus.Relay
	manager     *workflow.Manager
}

func NewWorkerManager(
	id string,
	store persistence.Persistence,
	dispatcher *queue.Dispatcher,
	logger *slog.Logger,
) *WorkerManager {
	return &WorkerManager{
		id:          id,
		logger:      logger.With("module", "hireflow-worker", "worker_id", id),
		persistence: store,
		dispatcher:  dispatcher,
	}
}

// WithRelay mirrors every lifecycle event to the given publisher.
func (w *WorkerManager) WithRelay(publisher message.Publisher) {
	w.relay = eventbus.NewRelay(publisher)
}

// Manager exposes the workflow manager for embedding applications. It is nil
// until Start has run.
func (w *WorkerManager) Manager() *workflow.Manager {
	return w.manager
}

func (w *WorkerManager) Start(ctx context.Context) error {
	w.logger.InfoContext(ctx, "Starting worker manager")

	emailClient := clients.NewLoggingEmailService(w.logger)
	calendarClient := clients.NewLoggingCalendarService(w.logger)
	aiClient := clients.NewLoggingAIService(w.logger)

	registry := cmd.NewRegistry(w.logger, w.persistence, calendarClient, w.dispatcher)
	cmd.RegisterHandlers(w.dispatcher, registry, w.persistence, emailClient, calendarClient, w.logger)

	bus := eventbus.NewInProcessEventBus(w.logger)
	workflow.NewHandlers(w.persistence, w.dispatcher, w.logger).Attach(bus)

	if w.relay != nil {
		w.relay.Attach(bus)

		defer func() {
			if err := w.relay.Close(); err != nil {
				w.logger.ErrorContext(ctx, "Failed to close relay", "error", err)
			}
		}()
	}

	evaluator := workflow.NewEvaluator(w.persistence, aiClient, w.logger)
	w.manager = workflow.NewManager(w.persistence, bus, evaluator, w.logger)

	w.dispatcher.Start(ctx)

	janitor := queue.NewJanitor(w.dispatcher, w.logger)
	if err := janitor.Start(ctx); err != nil {
		return err
	}

	w.logger.InfoContext(ctx, "Worker started successfully",
		"action_types", registry.AvailableTypes())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	w.logger.InfoContext(ctx, "Shutting down worker...")

	janitor.Stop()

	return w.dispatcher.Shutdown(ctx)
}
