package schedule_interview

import (
	"context"
	"errors"
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

func setup(t *testing.T) (*memory.Persistence, *mocks.MockCalendarService, *mocks.MockEnqueuer) {
	t.Helper()

	store := memory.NewPersistence()
	require.NoError(t, store.SaveCandidate(context.Background(), &models.Candidate{
		ID:        "cand-1",
		Email:     "jo@example.com",
		FirstName: "Jo",
		LastName:  "Doe",
	}))

	return store, &mocks.MockCalendarService{}, &mocks.MockEnqueuer{}
}

func testJob() *models.ActionJob {
	return &models.ActionJob{
		ID:    "job-abc",
		Queue: queue.QueueWorkflow,
		Type:  string(models.ActionScheduleInterview),
		Refs: models.TargetRefs{
			CandidateID: "cand-1",
			JobID:       "job-1",
			CompanyID:   "comp-1",
			WorkflowID:  "wf-1",
			StageID:     "stage-interview",
		},
	}
}

func TestProcessCreatesInterviewAndConfirmations(t *testing.T) {
	ctx := context.Background()
	store, calendar, enqueuer := setup(t)

	calendar.On("CreateEvent", mock.Anything, mock.Anything).Return("evt-123", nil)
	enqueuer.On("AddEmailJob", mock.Anything, mock.Anything, mock.Anything).Return("email-1", nil)

	processor, err := NewProcessor(map[string]any{
		"start_time":       "2025-03-10T14:00:00Z",
		"duration_minutes": float64(45),
		"interviewers":     []any{"alex@corp.example", "sam@corp.example"},
	}, store, calendar, enqueuer, slog.Default())
	require.NoError(t, err)

	outputs, err := processor.Process(ctx, testJob())
	require.NoError(t, err)
	assert.Equal(t, "evt-123", outputs["calendar_event_id"])

	interviews, err := store.InterviewsByPair(ctx, "cand-1", "job-1")
	require.NoError(t, err)
	require.Len(t, interviews, 1)
	assert.Equal(t, models.InterviewScheduled, interviews[0].Status)
	assert.Equal(t, "evt-123", interviews[0].CalendarEventID)
	assert.Equal(t, 45*time.Minute, interviews[0].Duration)

	// Candidate plus two interviewers.
	enqueuer.AssertNumberOfCalls(t, "AddEmailJob", 3)
}

func TestProcessCalendarFailureDoesNotFailJob(t *testing.T) {
	ctx := context.Background()
	store, calendar, enqueuer := setup(t)

	calendar.On("CreateEvent", mock.Anything, mock.Anything).Return("", errors.New("calendar provider down"))
	enqueuer.On("AddEmailJob", mock.Anything, mock.Anything, mock.Anything).Return("email-1", nil)

	processor, err := NewProcessor(map[string]any{}, store, calendar, enqueuer, slog.Default())
	require.NoError(t, err)

	outputs, err := processor.Process(ctx, testJob())
	require.NoError(t, err, "calendar failure is a warning, the interview record is the source of truth")
	assert.Equal(t, "", outputs["calendar_event_id"])

	interviews, err := store.InterviewsByPair(ctx, "cand-1", "job-1")
	require.NoError(t, err)
	require.Len(t, interviews, 1)
	assert.Empty(t, interviews[0].CalendarEventID)
}

func TestProcessRejectsMalformedStartTime(t *testing.T) {
	store, calendar, enqueuer := setup(t)

	processor, err := NewProcessor(map[string]any{
		"start_time": "next tuesday",
	}, store, calendar, enqueuer, slog.Default())
	require.NoError(t, err)

	_, err = processor.Process(context.Background(), testJob())
	require.Error(t, err)
}
