package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoStageDefinition() *WorkflowDefinition {
	return &WorkflowDefinition{
		ID:        "wf-1",
		CompanyID: "co-1",
		Name:      "Engineering Hiring",
		Version:   1,
		Stages: []Stage{
			{ID: "interview", Name: "Interview", Order: 2},
			{ID: "screening", Name: "Screening", Order: 1},
		},
	}
}

func TestWorkflowDefinitionValidate(t *testing.T) {
	tests := []struct {
		name        string
		definition  *WorkflowDefinition
		expectedErr error
	}{
		{
			name:       "valid definition",
			definition: twoStageDefinition(),
		},
		{
			name:        "no stages",
			definition:  &WorkflowDefinition{ID: "wf-empty"},
			expectedErr: ErrNoStages,
		},
		{
			name: "duplicate order",
			definition: &WorkflowDefinition{
				ID: "wf-dup-order",
				Stages: []Stage{
					{ID: "a", Order: 1},
					{ID: "b", Order: 1},
				},
			},
			expectedErr: ErrDuplicateStageOrder,
		},
		{
			name: "duplicate stage id",
			definition: &WorkflowDefinition{
				ID: "wf-dup-id",
				Stages: []Stage{
					{ID: "a", Order: 1},
					{ID: "a", Order: 2},
				},
			},
			expectedErr: ErrDuplicateStageID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.definition.Validate()
			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestWorkflowDefinitionStageNavigation(t *testing.T) {
	definition := twoStageDefinition()

	entry, ok := definition.EntryStage()
	require.True(t, ok)
	assert.Equal(t, "screening", entry.ID)

	next, ok := definition.NextStage(entry.Order)
	require.True(t, ok)
	assert.Equal(t, "interview", next.ID)

	_, ok = definition.NextStage(next.Order)
	assert.False(t, ok)

	stage, ok := definition.StageByID("interview")
	require.True(t, ok)
	assert.Equal(t, 2, stage.Order)

	_, ok = definition.StageByID("missing")
	assert.False(t, ok)

	ordered := definition.OrderedStages()
	require.Len(t, ordered, 2)
	assert.Equal(t, "screening", ordered[0].ID)
	assert.Equal(t, "interview", ordered[1].ID)
}

func TestStageActionsFor(t *testing.T) {
	stage := Stage{
		ID: "offer",
		Actions: []Action{
			{Type: ActionSendEmail, Trigger: TriggerOnEnter},
			{Type: ActionGenerateOfferLetter, Trigger: TriggerOnEnter},
			{Type: ActionSendEmail, Trigger: TriggerOnExit},
		},
	}

	onEnter := stage.ActionsFor(TriggerOnEnter)
	require.Len(t, onEnter, 2)
	assert.Equal(t, ActionGenerateOfferLetter, onEnter[1].Type)

	onExit := stage.ActionsFor(TriggerOnExit)
	require.Len(t, onExit, 1)

	assert.Empty(t, stage.ActionsFor(TriggerManual))
}

func TestInstanceStageBookkeeping(t *testing.T) {
	instance := &WorkflowInstance{
		ID:          "inst-1",
		CandidateID: "cand-1",
		JobID:       "job-1",
		Status:      InstanceStatusActive,
	}

	screening := &Stage{ID: "screening", Name: "Screening", Order: 1}
	interview := &Stage{ID: "interview", Name: "Interview", Order: 2}

	entered := time.Now().UTC()
	instance.EnterStage(screening, entered)

	open, ok := instance.OpenHistoryEntry()
	require.True(t, ok)
	assert.Equal(t, "screening", open.StageID)
	assert.Nil(t, open.ExitedAt)
	assert.Equal(t, "screening", instance.CurrentStageID)
	assert.Equal(t, 1, instance.CurrentStageOrder)

	score := 4.5
	exited := entered.Add(30 * time.Minute)
	instance.ExitStage(exited, OutcomePassed, "strong screen", &score)

	require.NotNil(t, instance.History[0].ExitedAt)
	assert.Equal(t, 30*time.Minute, *instance.History[0].Duration)
	assert.Equal(t, OutcomePassed, *instance.History[0].Outcome)
	assert.Equal(t, 4.5, *instance.History[0].Score)

	instance.EnterStage(interview, exited)

	open, ok = instance.OpenHistoryEntry()
	require.True(t, ok)
	assert.Equal(t, "interview", open.StageID)

	openCount := 0
	for _, entry := range instance.History {
		if entry.ExitedAt == nil {
			openCount++
		}
	}

	assert.Equal(t, 1, openCount)
}

func TestInstanceIsTerminal(t *testing.T) {
	assert.False(t, (&WorkflowInstance{Status: InstanceStatusActive}).IsTerminal())
	assert.False(t, (&WorkflowInstance{Status: InstanceStatusPaused}).IsTerminal())
	assert.True(t, (&WorkflowInstance{Status: InstanceStatusCompleted}).IsTerminal())
	assert.True(t, (&WorkflowInstance{Status: InstanceStatusRejected}).IsTerminal())
}

func TestActionJobIdempotencyKey(t *testing.T) {
	job := &ActionJob{
		Type: string(ActionSendEmail),
		Refs: TargetRefs{
			CandidateID: "cand-1",
			JobID:       "job-1",
			StageID:     "offer",
		},
	}

	assert.Equal(t, "cand-1:job-1:send_email:offer", job.IdempotencyKey())
}

func TestPayloadRoundTrip(t *testing.T) {
	type payload struct {
		Template string  `json:"template"`
		Score    float64 `json:"score"`
	}

	encoded, err := EncodePayload(payload{Template: "rejection", Score: 3.5})
	require.NoError(t, err)
	assert.Equal(t, "rejection", encoded["template"])

	var decoded payload

	require.NoError(t, DecodePayload(encoded, &decoded))
	assert.Equal(t, 3.5, decoded.Score)
}

func TestActionTypeValid(t *testing.T) {
	for _, actionType := range ActionTypes() {
		assert.True(t, actionType.Valid())
	}

	assert.False(t, ActionType("parse_resume").Valid())
}
