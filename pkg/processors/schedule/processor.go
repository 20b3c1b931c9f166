// Package schedule implements the schedule-queue sub-processor. It dispatches
// by schedule type; each handler composes calendar, email and notification
// calls.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hireflow/hireflow/pkg/clients"
	"github.com/hireflow/hireflow/pkg/models"
	"github.com/hireflow/hireflow/pkg/queue"
)

type Processor struct {
	calendar clients.CalendarService
	enqueuer queue.Enqueuer
	logger   *slog.Logger
}

func NewProcessor(calendar clients.CalendarService, enqueuer queue.Enqueuer, logger *slog.Logger) *Processor {
	return &Processor{
		calendar: calendar,
		enqueuer: enqueuer,
		logger:   logger.With("module", "schedule_processor"),
	}
}

func (p *Processor) Process(ctx context.Context, job *models.ActionJob) (map[string]any, error) {
	payload := queue.SchedulePayload{}
	if err := models.DecodePayload(job.Payload, &payload); err != nil {
		return nil, err
	}

	switch payload.ScheduleType {
	case models.ScheduleInterview:
		return p.handleInterview(ctx, job, payload)
	case models.ScheduleAssessment:
		return p.handleAssessment(ctx, job, payload)
	case models.ScheduleReminder:
		return p.handleReminder(ctx, job, payload)
	case models.ScheduleFollowUp:
		return p.handleFollowUp(ctx, job, payload)
	default:
		return nil, fmt.Errorf("unknown schedule type %s", payload.ScheduleType)
	}
}

func (p *Processor) handleInterview(ctx context.Context, job *models.ActionJob, payload queue.SchedulePayload) (map[string]any, error) {
	start, err := time.Parse(time.RFC3339, payload.StartTime)
	if err != nil {
		return nil, fmt.Errorf("invalid start_time: %w", err)
	}

	end, err := time.Parse(time.RFC3339, payload.EndTime)
	if err != nil {
		return nil, fmt.Errorf("invalid end_time: %w", err)
	}

	check, err := p.calendar.CheckConflicts(ctx, start, end, payload.Attendees)
	if err != nil {
		p.logger.WarnContext(ctx, "Conflict check failed, booking anyway", "error", err)
	} else if check.HasConflicts {
		p.logger.WarnContext(ctx, "Booking over calendar conflicts",
			"conflicts", len(check.Conflicts), "start", start)
	}

	eventID, err := p.calendar.CreateEvent(ctx, clients.CalendarEvent{
		Title:     payload.Title,
		Start:     start,
		End:       end,
		Attendees: payload.Attendees,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar event: %w", err)
	}

	_, err = p.enqueuer.AddNotificationJob(ctx, job.Refs, queue.NotificationPayload{
		NotificationType: models.NotifyInterviewBooked,
		Variables: map[string]any{
			"title":      payload.Title,
			"start_time": payload.StartTime,
			"event_id":   eventID,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue booked notification: %w", err)
	}

	return map[string]any{"calendar_event_id": eventID}, nil
}

func (p *Processor) handleAssessment(ctx context.Context, job *models.ActionJob, payload queue.SchedulePayload) (map[string]any, error) {
	return p.sendScheduleEmail(ctx, job, payload, "assessment_deadline_reminder")
}

func (p *Processor) handleReminder(ctx context.Context, job *models.ActionJob, payload queue.SchedulePayload) (map[string]any, error) {
	return p.sendScheduleEmail(ctx, job, payload, "reminder")
}

func (p *Processor) handleFollowUp(ctx context.Context, job *models.ActionJob, payload queue.SchedulePayload) (map[string]any, error) {
	outputs, err := p.sendScheduleEmail(ctx, job, payload, "follow_up")
	if err != nil {
		return nil, err
	}

	_, err = p.enqueuer.AddNotificationJob(ctx, job.Refs, queue.NotificationPayload{
		NotificationType: models.NotifyStageChange,
		Variables:        payload.Variables,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue follow-up notification: %w", err)
	}

	return outputs, nil
}

func (p *Processor) sendScheduleEmail(ctx context.Context, job *models.ActionJob, payload queue.SchedulePayload, template string) (map[string]any, error) {
	recipient, _ := payload.Variables["recipient_email"].(string)
	if recipient == "" && len(payload.Attendees) > 0 {
		recipient = payload.Attendees[0]
	}

	if recipient == "" {
		return nil, fmt.Errorf("schedule job %s has no recipient", job.ID)
	}

	name, _ := payload.Variables["recipient_name"].(string)

	emailJobID, err := p.enqueuer.AddEmailJob(ctx, job.Refs, queue.EmailPayload{
		TemplateName:   template,
		RecipientEmail: recipient,
		RecipientName:  name,
		Variables:      payload.Variables,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue %s email: %w", template, err)
	}

	return map[string]any{"email_job_id": emailJobID}, nil
}
