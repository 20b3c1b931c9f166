// Package notification implements the notification-queue sub-processor. It
// dispatches by notification type and composes a templated email; the sms and
// push channels are declared extension points and log without delivering.
package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hireflow/hireflow/pkg/models"
	"github.com/hireflow/hireflow/pkg/persistence"
	"github.com/hireflow/hireflow/pkg/queue"
)

// templates maps each notification type to the email template that carries
// it.
var templates = map[models.NotificationType]string{
	models.NotifyStageChange:       "notify_stage_change",
	models.NotifyCandidateAdvanced: "notify_candidate_advanced",
	models.NotifyCandidateRejected: "notify_candidate_rejected",
	models.NotifyWorkflowCompleted: "notify_workflow_completed",
	models.NotifyAssessmentPassed:  "notify_assessment_passed",
	models.NotifyInterviewBooked:   "notify_interview_booked",
}

type Processor struct {
	persistence persistence.Persistence
	enqueuer    queue.Enqueuer
	logger      *slog.Logger
}

func NewProcessor(persistence persistence.Persistence, enqueuer queue.Enqueuer, logger *slog.Logger) *Processor {
	return &Processor{
		persistence: persistence,
		enqueuer:    enqueuer,
		logger:      logger.With("module", "notification_processor"),
	}
}

func (p *Processor) Process(ctx context.Context, job *models.ActionJob) (map[string]any, error) {
	payload := queue.NotificationPayload{}
	if err := models.DecodePayload(job.Payload, &payload); err != nil {
		return nil, err
	}

	switch payload.Channel {
	case models.ChannelSMS, models.ChannelPush:
		// Declared in the contract but intentionally not delivered yet.
		p.logger.InfoContext(ctx, "Notification channel not implemented, skipping",
			"channel", payload.Channel, "type", payload.NotificationType)

		return map[string]any{"delivered": false, "channel": string(payload.Channel)}, nil
	case models.ChannelEmail:
	default:
		return nil, fmt.Errorf("unknown notification channel %s", payload.Channel)
	}

	template, ok := templates[payload.NotificationType]
	if !ok {
		return nil, fmt.Errorf("unknown notification type %s", payload.NotificationType)
	}

	recipient, name, err := p.resolveRecipient(ctx, job, payload)
	if err != nil {
		return nil, err
	}

	variables := map[string]any{
		"notification_type": string(payload.NotificationType),
		"candidate_id":      job.Refs.CandidateID,
		"job_id":            job.Refs.JobID,
		"stage_id":          job.Refs.StageID,
	}
	for k, v := range payload.Variables {
		variables[k] = v
	}

	emailJobID, err := p.enqueuer.AddEmailJob(ctx, job.Refs, queue.EmailPayload{
		TemplateName:   template,
		RecipientEmail: recipient,
		RecipientName:  name,
		Variables:      variables,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue notification email: %w", err)
	}

	return map[string]any{"delivered": true, "email_job_id": emailJobID}, nil
}

// resolveRecipient prefers the explicit recipient on the payload, falling
// back to the posting's hiring manager, who owns pipeline notifications.
func (p *Processor) resolveRecipient(ctx context.Context, job *models.ActionJob, payload queue.NotificationPayload) (string, string, error) {
	if payload.RecipientEmail != "" {
		return payload.RecipientEmail, payload.RecipientName, nil
	}

	posting, err := p.persistence.JobPostingByID(ctx, job.Refs.JobID)
	if err != nil {
		return "", "", fmt.Errorf("failed to resolve notification recipient: %w", err)
	}

	if posting.HiringManagerEmail == "" {
		return "", "", fmt.Errorf("job posting %s has no hiring manager to notify", posting.ID)
	}

	return posting.HiringManagerEmail, posting.HiringManagerName, nil
}
