// Package offer_letter implements the generate_offer_letter action: it
// computes the offer variables from the job posting and queues a
// high-priority offer email.
package offer_letter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hireflow/hireflow/pkg/models"
	"github.com/hireflow/hireflow/pkg/persistence"
	"github.com/hireflow/hireflow/pkg/queue"
)

const defaultStartDelayDays = 14

var defaultBenefits = []string{"health_insurance", "paid_time_off"}

type Processor struct {
	startDate string
	salary    *float64

	persistence persistence.Persistence
	enqueuer    queue.Enqueuer
	logger      *slog.Logger
}

func NewProcessor(config map[string]any, persistence persistence.Persistence, enqueuer queue.Enqueuer, logger *slog.Logger) (*Processor, error) {
	startDate, _ := config["start_date"].(string)

	var salary *float64
	if value, ok := config["salary"].(float64); ok {
		salary = &value
	}

	return &Processor{
		startDate:   startDate,
		salary:      salary,
		persistence: persistence,
		enqueuer:    enqueuer,
		logger:      logger.With("module", "offer_letter_processor"),
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

	startDate, err := p.resolveStartDate()
	if err != nil {
		return nil, err
	}

	salary := posting.SalaryMax
	if p.salary != nil {
		salary = *p.salary
	}

	benefits := posting.Benefits
	if len(benefits) == 0 {
		benefits = defaultBenefits
	}

	emailJobID, err := p.enqueuer.AddEmailJob(ctx, job.Refs, queue.EmailPayload{
		TemplateName:   "offer_letter",
		RecipientEmail: candidate.Email,
		RecipientName:  candidate.FullName(),
		Variables: map[string]any{
			"candidate_name": candidate.FullName(),
			"job_title":      posting.Title,
			"company_name":   company.Name,
			"start_date":     startDate.Format("2006-01-02"),
			"salary":         salary,
			"currency":       posting.Currency,
			"benefits":       benefits,
		},
		Priority: models.PriorityHigh,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue offer email: %w", err)
	}

	p.logger.InfoContext(ctx, "Offer letter queued",
		"candidate_id", candidate.ID, "job_id", posting.ID, "email_job_id", emailJobID)

	return map[string]any{
		"email_job_id": emailJobID,
		"start_date":   startDate.Format("2006-01-02"),
		"salary":       salary,
	}, nil
}

func (p *Processor) resolveStartDate() (time.Time, error) {
	if p.startDate == "" {
		return time.Now().AddDate(0, 0, defaultStartDelayDays), nil
	}

	startDate, err := time.Parse("2006-01-02", p.startDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid start_date: %w", err)
	}

	return startDate, nil
}
