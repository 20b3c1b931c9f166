package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hireflow/hireflow/pkg/clients"
	"github.com/hireflow/hireflow/pkg/models"
	"github.com/hireflow/hireflow/pkg/persistence"
)

const defaultScreeningScore = 70.0

// predicate is one requirement check. Predicates consult a narrow external
// read and never mutate instance state.
type predicate func(ctx context.Context, instance *models.WorkflowInstance, requirement models.Requirement) (bool, error)

// Evaluator evaluates stage requirements for auto-advance. All requirements
// of a stage must hold (logical AND).
type Evaluator struct {
	predicates map[models.RequirementType]predicate
	logger     *slog.Logger
}

func NewEvaluator(store persistence.Persistence, ai clients.AIService, logger *slog.Logger) *Evaluator {
	e := &Evaluator{logger: logger.With("module", "requirement_evaluator")}

	e.predicates = map[models.RequirementType]predicate{
		models.RequirementInterviewComplete: func(ctx context.Context, instance *models.WorkflowInstance, requirement models.Requirement) (bool, error) {
			interviews, err := store.InterviewsByPair(ctx, instance.CandidateID, instance.JobID)
			if err != nil {
				return false, fmt.Errorf("failed to read interviews: %w", err)
			}

			stageID, _ := requirement.Config["stage_id"].(string)

			for _, interview := range interviews {
				if stageID != "" && interview.StageID != stageID {
					continue
				}

				if interview.Status == models.InterviewCompleted {
					return true, nil
				}
			}

			return false, nil
		},

		models.RequirementAssessmentPassed: func(ctx context.Context, instance *models.WorkflowInstance, requirement models.Requirement) (bool, error) {
			assessment, err := store.AssessmentByPair(ctx, instance.CandidateID, instance.JobID)
			if err != nil {
				if errors.Is(err, persistence.ErrAssessmentNotFound) {
					return false, nil
				}

				return false, fmt.Errorf("failed to read assessment: %w", err)
			}

			if assessment.Status != models.AssessmentSubmitted || assessment.Score == nil {
				return false, nil
			}

			threshold := assessment.PassingScore
			if override, ok := requirement.Config["passing_score"].(float64); ok {
				threshold = override
			}

			return *assessment.Score >= threshold, nil
		},

		models.RequirementManualApproval: func(ctx context.Context, instance *models.WorkflowInstance, _ models.Requirement) (bool, error) {
			approval, err := store.ApprovalByStage(ctx, instance.CandidateID, instance.JobID, instance.CurrentStageID)
			if err != nil {
				if errors.Is(err, persistence.ErrApprovalNotFound) {
					return false, nil
				}

				return false, fmt.Errorf("failed to read approval: %w", err)
			}

			return approval.Granted, nil
		},

		models.RequirementAIScreeningPassed: func(ctx context.Context, instance *models.WorkflowInstance, requirement models.Requirement) (bool, error) {
			result, err := ai.MatchCandidateToJob(ctx, instance.CandidateID, instance.JobID)
			if err != nil {
				return false, fmt.Errorf("failed to run AI screening: %w", err)
			}

			threshold := defaultScreeningScore
			if override, ok := requirement.Config["min_score"].(float64); ok {
				threshold = override
			}

			return result.OverallScore >= threshold, nil
		},
	}

	return e
}

// Satisfied reports whether every requirement of the stage holds.
func (e *Evaluator) Satisfied(ctx context.Context, instance *models.WorkflowInstance, stage *models.Stage) (bool, error) {
	for _, requirement := range stage.Requirements {
		check, ok := e.predicates[requirement.Type]
		if !ok {
			return false, fmt.Errorf("unknown requirement type %s", requirement.Type)
		}

		held, err := check(ctx, instance, requirement)
		if err != nil {
			return false, err
		}

		if !held {
			e.logger.DebugContext(ctx, "Requirement not satisfied",
				"requirement", requirement.Type,
				"candidate_id", instance.CandidateID,
				"stage_id", stage.ID,
			)

			return false, nil
		}
	}

	return true, nil
}
