// Package assign_assessment implements the assign_assessment action: it
// creates the assessment record with a deadline and queues the invitation
// email.
package assign_assessment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hireflow/hireflow/pkg/models"
	"github.com/hireflow/hireflow/pkg/persistence"
	"github.com/hireflow/hireflow/pkg/queue"
)

const defaultDeadlineDays = 7

type Processor struct {
	kind         string
	deadlineDays int
	passingScore float64

	persistence persistence.Persistence
	enqueuer    queue.Enqueuer
	logger      *slog.Logger
}

func NewProcessor(config map[string]any, persistence persistence.Persistence, enqueuer queue.Enqueuer, logger *slog.Logger) (*Processor, error) {
	kind, _ := config["kind"].(string)

	deadlineDays := defaultDeadlineDays
	if days, ok := config["deadline_days"].(float64); ok {
		deadlineDays = int(days)
	}

	passingScore := 70.0
	if score, ok := config["passing_score"].(float64); ok {
		passingScore = score
	}

	return &Processor{
		kind:         kind,
		deadlineDays: deadlineDays,
		passingScore: passingScore,
		persistence:  persistence,
		enqueuer:     enqueuer,
		logger:       logger.With("module", "assign_assessment_processor"),
	}, nil
}

func (p *Processor) Process(ctx context.Context, job *models.ActionJob) (map[string]any, error) {
	candidate, err := p.persistence.CandidateByID(ctx, job.Refs.CandidateID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve candidate: %w", err)
	}

	deadline := time.Now().AddDate(0, 0, p.deadlineDays)

	assessment := &models.Assessment{
		ID:           uuid.NewString(),
		CandidateID:  job.Refs.CandidateID,
		JobID:        job.Refs.JobID,
		StageID:      job.Refs.StageID,
		Kind:         p.kind,
		AssignedAt:   time.Now(),
		Deadline:     deadline,
		PassingScore: p.passingScore,
		Status:       models.AssessmentAssigned,
	}

	if err := p.persistence.SaveAssessment(ctx, assessment); err != nil {
		return nil, fmt.Errorf("failed to save assessment: %w", err)
	}

	emailJobID, err := p.enqueuer.AddEmailJob(ctx, job.Refs, queue.EmailPayload{
		TemplateName:   "assessment_invitation",
		RecipientEmail: candidate.Email,
		RecipientName:  candidate.FullName(),
		Variables: map[string]any{
			"candidate_name":  candidate.FullName(),
			"assessment_kind": p.kind,
			"deadline":        deadline.Format(time.RFC3339),
			"deadline_days":   p.deadlineDays,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue assessment invitation: %w", err)
	}

	p.logger.InfoContext(ctx, "Assessment assigned",
		"assessment_id", assessment.ID, "deadline", deadline, "email_job_id", emailJobID)

	return map[string]any{
		"assessment_id": assessment.ID,
		"deadline":      deadline.Format(time.RFC3339),
		"email_job_id":  emailJobID,
	}, nil
}
