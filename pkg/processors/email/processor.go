// Package email implements the email-queue sub-processor. All three priority
// lanes run this same send routine; the lanes exist purely for queue-level
// scheduling.
package email

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hireflow/hireflow/pkg/clients"
	"github.com/hireflow/hireflow/pkg/models"
	"github.com/hireflow/hireflow/pkg/persistence"
	"github.com/hireflow/hireflow/pkg/queue"
)

type Processor struct {
	persistence persistence.Persistence
	email       clients.EmailService
	logger      *slog.Logger
}

func NewProcessor(persistence persistence.Persistence, email clients.EmailService, logger *slog.Logger) *Processor {
	return &Processor{
		persistence: persistence,
		email:       email,
		logger:      logger.With("module", "email_processor"),
	}
}

func (p *Processor) Process(ctx context.Context, job *models.ActionJob) (map[string]any, error) {
	payload := queue.EmailPayload{}
	if err := models.DecodePayload(job.Payload, &payload); err != nil {
		return nil, err
	}

	opts := clients.SendOptions{
		UseAIPersonalization: payload.UseAIPersonalization,
		// Retried sends reuse the same key so the delivery service can
		// deduplicate.
		IdempotencyKey: job.IdempotencyKey(),
	}

	if title, ok := payload.Variables["job_title"].(string); ok {
		opts.JobTitle = title
	}

	if name, ok := payload.Variables["company_name"].(string); ok {
		opts.CompanyName = name
	}

	if payload.UseAIPersonalization {
		candidate, err := p.persistence.CandidateByID(ctx, job.Refs.CandidateID)
		switch {
		case err == nil:
			opts.CandidateProfile = candidate.Profile
		case errors.Is(err, persistence.ErrCandidateNotFound):
			p.logger.WarnContext(ctx, "Candidate profile unavailable, sending without personalization",
				"candidate_id", job.Refs.CandidateID)
		default:
			return nil, fmt.Errorf("failed to resolve candidate profile: %w", err)
		}
	}

	sent, err := p.email.SendPersonalizedEmail(ctx,
		payload.TemplateName, payload.RecipientEmail, payload.RecipientName,
		payload.Variables, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to send email: %w", err)
	}

	p.logger.InfoContext(ctx, "Email delivered",
		"template", payload.TemplateName, "recipient", payload.RecipientEmail, "sent", sent)

	return map[string]any{"sent": sent}, nil
}
