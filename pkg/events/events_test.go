package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hireflow/hireflow/pkg/models"
)

func testInstance() *models.WorkflowInstance {
	return &models.WorkflowInstance{
		ID:          "inst-1",
		CandidateID: "cand-1",
		JobID:       "job-1",
		CompanyID:   "co-1",
		WorkflowID:  "wf-1",
	}
}

func TestNewBaseEvent(t *testing.T) {
	base := NewBaseEvent(StageEnteredEvent, testInstance(), "u1")

	require.NotEmpty(t, base.ID)
	assert.Equal(t, StageEnteredEvent, base.Type)
	assert.False(t, base.Timestamp.IsZero())
	assert.Equal(t, "cand-1", base.CandidateID)
	assert.Equal(t, "job-1", base.JobID)
	assert.Equal(t, "co-1", base.CompanyID)
	assert.Equal(t, "wf-1", base.WorkflowID)
	assert.Equal(t, "u1", base.TriggeredBy)
	assert.Equal(t, "cand-1:job-1", base.PairKey())
}

func TestEventTypes(t *testing.T) {
	instance := testInstance()

	tests := []struct {
		name     string
		event    interface{ GetType() EventType }
		expected EventType
	}{
		{"stage entered", StageEntered{BaseEvent: NewBaseEvent(StageEnteredEvent, instance, "u1")}, StageEnteredEvent},
		{"stage exited", StageExited{BaseEvent: NewBaseEvent(StageExitedEvent, instance, "u1")}, StageExitedEvent},
		{"candidate advanced", CandidateAdvanced{}, CandidateAdvancedEvent},
		{"candidate rejected", CandidateRejected{}, CandidateRejectedEvent},
		{"workflow completed", WorkflowCompleted{}, WorkflowCompletedEvent},
		{"action triggered", ActionTriggered{}, ActionTriggeredEvent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.event.GetType())
		})
	}
}
