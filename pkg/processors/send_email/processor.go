// Package send_email implements the send_email action: it resolves the
// candidate, job and company, builds the template variables, and forwards the
// send to the email queue. Deciding to send and actually sending are
// deliberately decoupled.
package send_email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hireflow/hireflow/pkg/models"
	"github.com/hireflow/hireflow/pkg/persistence"
	"github.com/hireflow/hireflow/pkg/queue"
)

type Processor struct {
	template             string
	priority             models.JobPriority
	useAIPersonalization bool
	variables            map[string]any

	persistence persistence.Persistence
	enqueuer    queue.Enqueuer
	logger      *slog.Logger
}

func NewProcessor(config map[string]any, persistence persistence.Persistence, enqueuer queue.Enqueuer, logger *slog.Logger) (*Processor, error) {
	template, _ := config["template"].(string)
	priority, _ := config["priority"].(string)
	useAI, _ := config["use_ai_personalization"].(bool)
	variables, _ := config["variables"].(map[string]any)

	if priority == "" {
		priority = string(models.PriorityNormal)
	}

	return &Processor{
		template:             template,
		priority:             models.JobPriority(priority),
		useAIPersonalization: useAI,
		variables:            variables,
		persistence:          persistence,
		enqueuer:             enqueuer,
		logger:               logger.With("module", "send_email_processor"),
	}, nil
}

func (p *Processor) Process(ctx context.Context, job *models.ActionJob) (map[string]any, error) {
	candidate, err := p.persistence.CandidateByID(ctx, job.Refs.CandidateID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve candidate: %w", err)
	}

	posting, err := p.persistence.JobPostingByID(ctx, job.Refs.JobID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve job posting: %w", err)
	}

	company, err := p.persistence.CompanyByID(ctx, job.Refs.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve company: %w", err)
	}

	variables := map[string]any{
		"candidate_name": candidate.FullName(),
		"job_title":      posting.Title,
		"company_name":   company.Name,
		"location":       posting.Location,
	}
	for k, v := range p.variables {
		variables[k] = v
	}

	emailJobID, err := p.enqueuer.AddEmailJob(ctx, job.Refs, queue.EmailPayload{
		TemplateName:         p.template,
		RecipientEmail:       candidate.Email,
		RecipientName:        candidate.FullName(),
		Variables:            variables,
		Priority:             p.priority,
		UseAIPersonalization: p.useAIPersonalization,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue email job: %w", err)
	}

	p.logger.InfoContext(ctx, "Queued email send",
		"template", p.template, "recipient", candidate.Email, "email_job_id", emailJobID)

	return map[string]any{"email_job_id": emailJobID}, nil
}
