// Package verify_assessment implements the verify_assessment action: it
// compares the reported score against the passing threshold. A failing or
// incomplete assessment is a business outcome, not a job fault.
package verify_assessment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hireflow/hireflow/pkg/models"
	"github.com/hireflow/hireflow/pkg/persistence"
	"github.com/hireflow/hireflow/pkg/queue"
)

type Processor struct {
	notifyOnPass bool
	threshold    *float64

	persistence persistence.Persistence
	enqueuer    queue.Enqueuer
	logger      *slog.Logger
}

func NewProcessor(config map[string]any, persistence persistence.Persistence, enqueuer queue.Enqueuer, logger *slog.Logger) (*Processor, error) {
	notifyOnPass, _ := config["notify_on_pass"].(bool)

	var threshold *float64
	if value, ok := config["passing_score"].(float64); ok {
		threshold = &value
	}

	return &Processor{
		notifyOnPass: notifyOnPass,
		threshold:    threshold,
		persistence:  persistence,
		enqueuer:     enqueuer,
		logger:       logger.With("module", "verify_assessment_processor"),
	}, nil
}

func (p *Processor) Process(ctx context.Context, job *models.ActionJob) (map[string]any, error) {
	assessment, err := p.persistence.AssessmentByPair(ctx, job.Refs.CandidateID, job.Refs.JobID)
	if err != nil {
		if errors.Is(err, persistence.ErrAssessmentNotFound) {
			return map[string]any{"passed": false, "reason": "no assessment on record"}, nil
		}

		return nil, fmt.Errorf("failed to read assessment: %w", err)
	}

	if assessment.Status != models.AssessmentSubmitted || assessment.Score == nil {
		return map[string]any{"passed": false, "reason": "assessment not submitted"}, nil
	}

	threshold := assessment.PassingScore
	if p.threshold != nil {
		threshold = *p.threshold
	}

	passed := *assessment.Score >= threshold

	p.logger.InfoContext(ctx, "Assessment verified",
		"assessment_id", assessment.ID, "score", *assessment.Score,
		"threshold", threshold, "passed", passed)

	if passed && p.notifyOnPass {
		_, err := p.enqueuer.AddNotificationJob(ctx, job.Refs, queue.NotificationPayload{
			NotificationType: models.NotifyAssessmentPassed,
			Variables: map[string]any{
				"score":     *assessment.Score,
				"threshold": threshold,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to enqueue pass notification: %w", err)
		}
	}

	return map[string]any{
		"passed":    passed,
		"score":     *assessment.Score,
		"threshold": threshold,
	}, nil
}
