package verify_assessment

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hireflow/hireflow/pkg/mocks"
	"github.com/hireflow/hireflow/pkg/models"
	"github.com/hireflow/hireflow/pkg/persistence/memory"
	"github.com/hireflow/hireflow/pkg/queue"
)

func testJob() *models.ActionJob {
	return &models.ActionJob{
		ID:    "job-verify",
		Queue: queue.QueueWorkflow,
		Type:  string(models.ActionVerifyAssessment),
		Refs: models.TargetRefs{
			CandidateID: "cand-1",
			JobID:       "job-1",
			StageID:     "stage-assessment",
		},
	}
}

func saveAssessment(t *testing.T, store *memory.Persistence, status models.AssessmentStatus, score *float64) {
	t.Helper()

	require.NoError(t, store.SaveAssessment(context.Background(), &models.Assessment{
		ID:           "assess-1",
		CandidateID:  "cand-1",
		JobID:        "job-1",
		StageID:      "stage-assessment",
		AssignedAt:   time.Now().Add(-48 * time.Hour),
		Deadline:     time.Now().Add(5 * 24 * time.Hour),
		Score:        score,
		PassingScore: 70,
		Status:       status,
	}))
}

func TestProcessPassingScore(t *testing.T) {
	store := memory.NewPersistence()
	enqueuer := &mocks.MockEnqueuer{}

	score := 85.0
	saveAssessment(t, store, models.AssessmentSubmitted, &score)

	enqueuer.On("AddNotificationJob", mock.Anything, mock.Anything, mock.Anything).Return("notify-1", nil)

	processor, err := NewProcessor(map[string]any{"notify_on_pass": true}, store, enqueuer, slog.Default())
	require.NoError(t, err)

	outputs, err := processor.Process(context.Background(), testJob())
	require.NoError(t, err)
	assert.Equal(t, true, outputs["passed"])
	enqueuer.AssertNumberOfCalls(t, "AddNotificationJob", 1)
}

func TestProcessFailingScoreIsNotAnError(t *testing.T) {
	store := memory.NewPersistence()
	enqueuer := &mocks.MockEnqueuer{}

	score := 55.0
	saveAssessment(t, store, models.AssessmentSubmitted, &score)

	processor, err := NewProcessor(map[string]any{"notify_on_pass": true}, store, enqueuer, slog.Default())
	require.NoError(t, err)

	outputs, err := processor.Process(context.Background(), testJob())
	require.NoError(t, err, "a failed assessment is a business outcome, not a fault")
	assert.Equal(t, false, outputs["passed"])
	enqueuer.AssertNotCalled(t, "AddNotificationJob", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessIncompleteAssessment(t *testing.T) {
	store := memory.NewPersistence()
	enqueuer := &mocks.MockEnqueuer{}

	saveAssessment(t, store, models.AssessmentAssigned, nil)

	processor, err := NewProcessor(map[string]any{}, store, enqueuer, slog.Default())
	require.NoError(t, err)

	outputs, err := processor.Process(context.Background(), testJob())
	require.NoError(t, err)
	assert.Equal(t, false, outputs["passed"])
	assert.Equal(t, "assessment not submitted", outputs["reason"])
}

func TestProcessMissingAssessment(t *testing.T) {
	store := memory.NewPersistence()
	enqueuer := &mocks.MockEnqueuer{}

	processor, err := NewProcessor(map[string]any{}, store, enqueuer, slog.Default())
	require.NoError(t, err)

	outputs, err := processor.Process(context.Background(), testJob())
	require.NoError(t, err)
	assert.Equal(t, false, outputs["passed"])
}

func TestProcessConfigThresholdOverridesRecord(t *testing.T) {
	store := memory.NewPersistence()
	enqueuer := &mocks.MockEnqueuer{}

	score := 75.0
	saveAssessment(t, store, models.AssessmentSubmitted, &score)

	processor, err := NewProcessor(map[string]any{"passing_score": float64(80)}, store, enqueuer, slog.Default())
	require.NoError(t, err)

	outputs, err := processor.Process(context.Background(), testJob())
	require.NoError(t, err)
	assert.Equal(t, false, outputs["passed"])
	assert.InDelta(t, 80.0, outputs["threshold"], 0.001)
}
