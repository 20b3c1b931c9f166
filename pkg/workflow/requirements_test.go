package workflow_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hireflow/hireflow/pkg/clients"
	"github.com/hireflow/hireflow/pkg/mocks"
	"github.com/hireflow/hireflow/pkg/models"
	"github.com/hireflow/hireflow/pkg/persistence/memory"
	"github.com/hireflow/hireflow/pkg/workflow"
)

func newEvaluator(t *testing.T) (*workflow.Evaluator, *memory.Persistence, *mocks.MockAIService) {
	t.Helper()

	store := memory.NewPersistence()
	ai := &mocks.MockAIService{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return workflow.NewEvaluator(store, ai, logger), store, ai
}

func pairInstance() *models.WorkflowInstance {
	return &models.WorkflowInstance{
		ID:             "inst-1",
		CandidateID:    "cand-1",
		JobID:          "job-1",
		CompanyID:      "co-1",
		WorkflowID:     "wf-eng",
		CurrentStageID: "stage-screening",
		Status:         models.InstanceStatusActive,
	}
}

func requirementStage(requirements ...models.Requirement) *models.Stage {
	return &models.Stage{
		ID:           "stage-screening",
		Name:         "Screening",
		Order:        1,
		AutoAdvance:  true,
		Requirements: requirements,
	}
}

func TestAssessmentPassedRequirement(t *testing.T) {
	evaluator, store, _ := newEvaluator(t)
	stage := requirementStage(models.Requirement{Type: models.RequirementAssessmentPassed})

	// No assessment on record is simply unmet, not an error.
	held, err := evaluator.Satisfied(context.Background(), pairInstance(), stage)
	require.NoError(t, err)
	assert.False(t, held)

	score := 65.0
	assessment := &models.Assessment{
		ID:           "assess-1",
		CandidateID:  "cand-1",
		JobID:        "job-1",
		Score:        &score,
		PassingScore: 70.0,
		Status:       models.AssessmentSubmitted,
	}
	require.NoError(t, store.SaveAssessment(context.Background(), assessment))

	held, err = evaluator.Satisfied(context.Background(), pairInstance(), stage)
	require.NoError(t, err)
	assert.False(t, held)

	passing := 82.5
	assessment.Score = &passing
	require.NoError(t, store.UpdateAssessment(context.Background(), assessment))

	held, err = evaluator.Satisfied(context.Background(), pairInstance(), stage)
	require.NoError(t, err)
	assert.True(t, held)

	// A per-stage threshold override beats the stored passing score.
	strict := requirementStage(models.Requirement{
		Type:   models.RequirementAssessmentPassed,
		Config: map[string]any{"passing_score": 90.0},
	})
	held, err = evaluator.Satisfied(context.Background(), pairInstance(), strict)
	require.NoError(t, err)
	assert.False(t, held)
}

func TestAssessmentNotSubmittedIsUnmet(t *testing.T) {
	evaluator, store, _ := newEvaluator(t)
	stage := requirementStage(models.Requirement{Type: models.RequirementAssessmentPassed})

	require.NoError(t, store.SaveAssessment(context.Background(), &models.Assessment{
		ID:           "assess-1",
		CandidateID:  "cand-1",
		JobID:        "job-1",
		PassingScore: 70.0,
		Status:       models.AssessmentAssigned,
	}))

	held, err := evaluator.Satisfied(context.Background(), pairInstance(), stage)
	require.NoError(t, err)
	assert.False(t, held)
}

func TestInterviewCompleteRequirement(t *testing.T) {
	evaluator, store, _ := newEvaluator(t)
	stage := requirementStage(models.Requirement{Type: models.RequirementInterviewComplete})

	require.NoError(t, store.SaveInterview(context.Background(), &models.Interview{
		ID:          "int-1",
		CandidateID: "cand-1",
		JobID:       "job-1",
		StageID:     "stage-screening",
		Status:      models.InterviewScheduled,
	}))

	held, err := evaluator.Satisfied(context.Background(), pairInstance(), stage)
	require.NoError(t, err)
	assert.False(t, held)

	require.NoError(t, store.SaveInterview(context.Background(), &models.Interview{
		ID:          "int-2",
		CandidateID: "cand-1",
		JobID:       "job-1",
		StageID:     "stage-interview",
		Status:      models.InterviewCompleted,
	}))

	held, err = evaluator.Satisfied(context.Background(), pairInstance(), stage)
	require.NoError(t, err)
	assert.True(t, held)

	// A stage filter only counts interviews attached to that stage.
	filtered := requirementStage(models.Requirement{
		Type:   models.RequirementInterviewComplete,
		Config: map[string]any{"stage_id": "stage-screening"},
	})
	held, err = evaluator.Satisfied(context.Background(), pairInstance(), filtered)
	require.NoError(t, err)
	assert.False(t, held)
}

func TestAIScreeningRequirement(t *testing.T) {
	evaluator, _, ai := newEvaluator(t)

	ai.On("MatchCandidateToJob", context.Background(), "cand-1", "job-1").
		Return(clients.MatchResult{OverallScore: 81.0}, nil)

	stage := requirementStage(models.Requirement{Type: models.RequirementAIScreeningPassed})
	held, err := evaluator.Satisfied(context.Background(), pairInstance(), stage)
	require.NoError(t, err)
	assert.True(t, held)

	strict := requirementStage(models.Requirement{
		Type:   models.RequirementAIScreeningPassed,
		Config: map[string]any{"min_score": 90.0},
	})
	held, err = evaluator.Satisfied(context.Background(), pairInstance(), strict)
	require.NoError(t, err)
	assert.False(t, held)
}

func TestAIScreeningErrorPropagates(t *testing.T) {
	evaluator, _, ai := newEvaluator(t)

	ai.On("MatchCandidateToJob", context.Background(), "cand-1", "job-1").
		Return(clients.MatchResult{}, errors.New("model unavailable"))

	stage := requirementStage(models.Requirement{Type: models.RequirementAIScreeningPassed})
	_, err := evaluator.Satisfied(context.Background(), pairInstance(), stage)
	require.Error(t, err)
}

func TestAllRequirementsMustHold(t *testing.T) {
	evaluator, store, _ := newEvaluator(t)

	stage := requirementStage(
		models.Requirement{Type: models.RequirementManualApproval},
		models.Requirement{Type: models.RequirementInterviewComplete},
	)

	require.NoError(t, store.SaveApproval(context.Background(), &models.Approval{
		CandidateID: "cand-1",
		JobID:       "job-1",
		StageID:     "stage-screening",
		Granted:     true,
	}))

	// Approval alone is not enough while the interview is outstanding.
	held, err := evaluator.Satisfied(context.Background(), pairInstance(), stage)
	require.NoError(t, err)
	assert.False(t, held)

	require.NoError(t, store.SaveInterview(context.Background(), &models.Interview{
		ID:          "int-1",
		CandidateID: "cand-1",
		JobID:       "job-1",
		Status:      models.InterviewCompleted,
	}))

	held, err = evaluator.Satisfied(context.Background(), pairInstance(), stage)
	require.NoError(t, err)
	assert.True(t, held)
}

func TestUnknownRequirementTypeErrors(t *testing.T) {
	evaluator, _, _ := newEvaluator(t)

	stage := requirementStage(models.Requirement{Type: models.RequirementType("vibes_check")})
	_, err := evaluator.Satisfied(context.Background(), pairInstance(), stage)
	require.Error(t, err)
}
