package cmd

import (
	"context"
	"log/slog"

	"github.com/hireflow/hireflow/pkg/clients"
	"github.com/hireflow/hireflow/pkg/models"
	"github.com/hireflow/hireflow/pkg/persistence"
	"github.com/hireflow/hireflow/pkg/processors/assign_assessment"
	"github.com/hireflow/hireflow/pkg/processors/calendar_event"
	"github.com/hireflow/hireflow/pkg/processors/email"
	"github.com/hireflow/hireflow/pkg/processors/notification"
	"github.com/hireflow/hireflow/pkg/processors/offer_letter"
	"github.com/hireflow/hireflow/pkg/processors/schedule"
	"github.com/hireflow/hireflow/pkg/processors/schedule_interview"
	"github.com/hireflow/hireflow/pkg/processors/send_email"
	"github.com/hireflow/hireflow/pkg/processors/verify_assessment"
	"github.com/hireflow/hireflow/pkg/protocol"
	"github.com/hireflow/hireflow/pkg/queue"
	"github.com/hireflow/hireflow/pkg/registry"
)

// NewRegistry builds the processor registry with every native action factory
// registered.
func NewRegistry(logger *slog.Logger, store persistence.Persistence, calendar clients.CalendarService, enqueuer queue.Enqueuer) *registry.Registry {
	reg := registry.NewRegistry(logger)

	reg.Register(send_email.NewFactory(store, enqueuer, logger))
	reg.Register(schedule_interview.NewFactory(store, calendar, enqueuer, logger))
	reg.Register(assign_assessment.NewFactory(store, enqueuer, logger))
	reg.Register(verify_assessment.NewFactory(store, enqueuer, logger))
	reg.Register(calendar_event.NewFactory(enqueuer, logger))
	reg.Register(offer_letter.NewFactory(store, enqueuer, logger))

	return reg
}

// RegisterHandlers wires every job type the dispatcher consumes: one handler
// per action type on the workflow queue, plus the three lane sub-processors.
func RegisterHandlers(
	dispatcher *queue.Dispatcher,
	reg *registry.Registry,
	store persistence.Persistence,
	emailClient clients.EmailService,
	calendarClient clients.CalendarService,
	logger *slog.Logger,
) {
	for _, actionType := range models.ActionTypes() {
		dispatcher.RegisterHandler(string(actionType), workflowActionHandler(reg))
	}

	dispatcher.RegisterHandler(queue.JobTypeEmail,
		processorHandler(email.NewProcessor(store, emailClient, logger)))
	dispatcher.RegisterHandler(queue.JobTypeSchedule,
		processorHandler(schedule.NewProcessor(calendarClient, dispatcher, logger)))
	dispatcher.RegisterHandler(queue.JobTypeNotification,
		processorHandler(notification.NewProcessor(store, dispatcher, logger)))
}

// workflowActionHandler builds the processor for the job's action type on
// every attempt. Decode and config validation failures fail the job
// immediately; retrying a bad config cannot fix it.
func workflowActionHandler(reg *registry.Registry) queue.Handler {
	return func(ctx context.Context, job *models.ActionJob) error {
		var payload queue.WorkflowActionPayload
		if err := models.DecodePayload(job.Payload, &payload); err != nil {
			return queue.NonRetryable(err)
		}

		processor, err := reg.Create(job.Type, payload.Config)
		if err != nil {
			return queue.NonRetryable(err)
		}

		_, err = processor.Process(ctx, job)

		return err
	}
}

func processorHandler(processor protocol.Processor) queue.Handler {
	return func(ctx context.Context, job *models.ActionJob) error {
		_, err := processor.Process(ctx, job)

		return err
	}
}
