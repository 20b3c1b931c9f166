package workflow_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hireflow/hireflow/pkg/eventbus"
	"github.com/hireflow/hireflow/pkg/events"
	"github.com/hireflow/hireflow/pkg/mocks"
	"github.com/hireflow/hireflow/pkg/models"
	"github.com/hireflow/hireflow/pkg/persistence/memory"
	"github.com/hireflow/hireflow/pkg/workflow"
)

// recorder captures every lifecycle event the bus delivers, in order.
type recorder struct {
	events []eventbus.Event
}

func (r *recorder) attach(bus eventbus.EventBus) {
	types := []events.EventType{
		events.StageEnteredEvent,
		events.StageExitedEvent,
		events.CandidateAdvancedEvent,
		events.CandidateRejectedEvent,
		events.WorkflowCompletedEvent,
		events.ActionTriggeredEvent,
	}

	for _, eventType := range types {
		bus.Handle(eventType, func(_ context.Context, event eventbus.Event) error {
			r.events = append(r.events, event)

			return nil
		})
	}
}

func (r *recorder) types() []events.EventType {
	types := make([]events.EventType, 0, len(r.events))
	for _, event := range r.events {
		types = append(types, event.GetType())
	}

	return types
}

func (r *recorder) reset() {
	r.events = nil
}

func hiringDefinition() *models.WorkflowDefinition {
	return &models.WorkflowDefinition{
		ID:        "wf-eng",
		CompanyID: "co-1",
		Name:      "Engineering Hiring",
		Version:   1,
		Stages: []models.Stage{
			{ID: "stage-screening", Name: "Screening", Order: 1},
			{ID: "stage-interview", Name: "Interview", Order: 2},
			{ID: "stage-offer", Name: "Offer", Order: 3},
		},
	}
}

func newTestManager(t *testing.T, definition *models.WorkflowDefinition) (*workflow.Manager, *memory.Persistence, *recorder) {
	t.Helper()

	store := memory.NewPersistence()
	require.NoError(t, store.SaveDefinition(context.Background(), definition))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bus := eventbus.NewInProcessEventBus(logger)

	rec := &recorder{}
	rec.attach(bus)

	evaluator := workflow.NewEvaluator(store, &mocks.MockAIService{}, logger)

	return workflow.NewManager(store, bus, evaluator, logger), store, rec
}

func startInstance(t *testing.T, manager *workflow.Manager) *models.WorkflowInstance {
	t.Helper()

	instance, err := manager.Start(context.Background(), workflow.StartParams{
		CandidateID: "cand-1",
		JobID:       "job-1",
		CompanyID:   "co-1",
		WorkflowID:  "wf-eng",
		TriggeredBy: "recruiter@acme.test",
	})
	require.NoError(t, err)

	return instance
}

func TestStartPlacesInstanceAtEntryStage(t *testing.T) {
	manager, _, rec := newTestManager(t, hiringDefinition())

	instance := startInstance(t, manager)

	assert.Equal(t, models.InstanceStatusActive, instance.Status)
	assert.Equal(t, "stage-screening", instance.CurrentStageID)
	assert.Equal(t, 1, instance.CurrentStageOrder)

	require.Len(t, instance.History, 1)
	entry, ok := instance.OpenHistoryEntry()
	require.True(t, ok)
	assert.Equal(t, "stage-screening", entry.StageID)
	assert.Nil(t, entry.ExitedAt)

	assert.Equal(t, []events.EventType{events.StageEnteredEvent}, rec.types())
}

func TestStartRejectsSecondActiveInstance(t *testing.T) {
	manager, _, _ := newTestManager(t, hiringDefinition())

	first := startInstance(t, manager)

	_, err := manager.Start(context.Background(), workflow.StartParams{
		CandidateID: "cand-1",
		JobID:       "job-1",
		CompanyID:   "co-1",
		WorkflowID:  "wf-eng",
	})
	require.ErrorIs(t, err, workflow.ErrAlreadyActive)

	reused, err := manager.Start(context.Background(), workflow.StartParams{
		CandidateID:   "cand-1",
		JobID:         "job-1",
		CompanyID:     "co-1",
		WorkflowID:    "wf-eng",
		ReuseExisting: true,
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, reused.ID)
}

func TestStartAllowsNewInstanceAfterTerminal(t *testing.T) {
	manager, _, _ := newTestManager(t, hiringDefinition())

	first := startInstance(t, manager)
	require.NoError(t, manager.Reject(context.Background(), "cand-1", "job-1", "not a fit", "", "recruiter@acme.test"))

	second := startInstance(t, manager)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, models.InstanceStatusActive, second.Status)
}

func TestAdvanceToClosesHistoryAndEntersTarget(t *testing.T) {
	manager, _, rec := newTestManager(t, hiringDefinition())
	startInstance(t, manager)
	rec.reset()

	score := 88.0
	err := manager.AdvanceTo(context.Background(), "cand-1", "job-1", "stage-interview", workflow.AdvanceOptions{
		Reason:      "passed phone screen",
		Feedback:    "strong systems background",
		Score:       &score,
		TriggeredBy: "recruiter@acme.test",
	})
	require.NoError(t, err)

	instance, err := manager.InstanceByPair(context.Background(), "cand-1", "job-1")
	require.NoError(t, err)

	assert.Equal(t, "stage-interview", instance.CurrentStageID)
	require.Len(t, instance.History, 2)

	closed := instance.History[0]
	require.NotNil(t, closed.ExitedAt)
	require.NotNil(t, closed.Outcome)
	assert.Equal(t, models.OutcomePassed, *closed.Outcome)
	assert.Equal(t, "strong systems background", closed.Feedback)
	require.NotNil(t, closed.Score)
	assert.Equal(t, 88.0, *closed.Score)

	open, ok := instance.OpenHistoryEntry()
	require.True(t, ok)
	assert.Equal(t, "stage-interview", open.StageID)

	assert.Equal(t, []events.EventType{
		events.StageExitedEvent,
		events.CandidateAdvancedEvent,
		events.StageEnteredEvent,
	}, rec.types())
}

func TestAdvanceToRejectsBackwardMoveWithoutSkip(t *testing.T) {
	manager, _, _ := newTestManager(t, hiringDefinition())
	startInstance(t, manager)

	require.NoError(t, manager.AdvanceTo(context.Background(), "cand-1", "job-1", "stage-interview", workflow.AdvanceOptions{}))

	err := manager.AdvanceTo(context.Background(), "cand-1", "job-1", "stage-screening", workflow.AdvanceOptions{})
	require.ErrorIs(t, err, workflow.ErrInvalidOrder)

	// The failed call must not have touched the stored instance.
	instance, err := manager.InstanceByPair(context.Background(), "cand-1", "job-1")
	require.NoError(t, err)
	assert.Equal(t, "stage-interview", instance.CurrentStageID)
	assert.Len(t, instance.History, 2)

	err = manager.AdvanceTo(context.Background(), "cand-1", "job-1", "stage-screening", workflow.AdvanceOptions{
		SkipValidation: true,
		Reason:         "re-screen after referral",
	})
	require.NoError(t, err)

	instance, err = manager.InstanceByPair(context.Background(), "cand-1", "job-1")
	require.NoError(t, err)
	assert.Equal(t, "stage-screening", instance.CurrentStageID)
	assert.Len(t, instance.History, 3)
}

func TestAdvanceToRequiresStageRequirementsOnRequiredStage(t *testing.T) {
	definition := hiringDefinition()
	definition.Stages[0].IsRequired = true
	definition.Stages[0].Requirements = []models.Requirement{
		{Type: models.RequirementManualApproval},
	}

	manager, store, _ := newTestManager(t, definition)
	startInstance(t, manager)

	err := manager.AdvanceTo(context.Background(), "cand-1", "job-1", "stage-interview", workflow.AdvanceOptions{})
	require.ErrorIs(t, err, workflow.ErrRequirementsNotMet)

	// SkipValidation is the manual override.
	err = manager.AdvanceTo(context.Background(), "cand-1", "job-1", "stage-interview", workflow.AdvanceOptions{
		SkipValidation: true,
		Reason:         "override by hiring manager",
	})
	require.NoError(t, err)

	// With a granted approval the normal path works too.
	require.NoError(t, manager.AdvanceTo(context.Background(), "cand-1", "job-1", "stage-screening", workflow.AdvanceOptions{SkipValidation: true}))
	require.NoError(t, store.SaveApproval(context.Background(), &models.Approval{
		CandidateID: "cand-1",
		JobID:       "job-1",
		StageID:     "stage-screening",
		Granted:     true,
	}))
	require.NoError(t, manager.AdvanceTo(context.Background(), "cand-1", "job-1", "stage-interview", workflow.AdvanceOptions{}))
}

func TestAdvanceToUnknownStage(t *testing.T) {
	manager, _, _ := newTestManager(t, hiringDefinition())
	startInstance(t, manager)

	err := manager.AdvanceTo(context.Background(), "cand-1", "job-1", "stage-nope", workflow.AdvanceOptions{})
	require.ErrorIs(t, err, workflow.ErrStageNotFound)
}

func TestRejectTerminatesInstance(t *testing.T) {
	manager, _, rec := newTestManager(t, hiringDefinition())
	startInstance(t, manager)
	rec.reset()

	err := manager.Reject(context.Background(), "cand-1", "job-1", "failed screening", "missing required experience", "recruiter@acme.test")
	require.NoError(t, err)

	instance, err := manager.InstanceByPair(context.Background(), "cand-1", "job-1")
	require.NoError(t, err)

	assert.Equal(t, models.InstanceStatusRejected, instance.Status)
	require.NotNil(t, instance.RejectedAt)

	_, open := instance.OpenHistoryEntry()
	assert.False(t, open)
	require.NotNil(t, instance.History[0].Outcome)
	assert.Equal(t, models.OutcomeFailed, *instance.History[0].Outcome)

	assert.Equal(t, []events.EventType{events.CandidateRejectedEvent}, rec.types())

	// Terminal instances accept no further transitions.
	err = manager.AdvanceTo(context.Background(), "cand-1", "job-1", "stage-interview", workflow.AdvanceOptions{})
	require.ErrorIs(t, err, workflow.ErrNoActiveInstance)

	err = manager.Reject(context.Background(), "cand-1", "job-1", "again", "", "recruiter@acme.test")
	require.ErrorIs(t, err, workflow.ErrNoActiveInstance)
}

func TestCompleteTerminatesInstance(t *testing.T) {
	manager, _, rec := newTestManager(t, hiringDefinition())
	startInstance(t, manager)
	require.NoError(t, manager.AdvanceTo(context.Background(), "cand-1", "job-1", "stage-offer", workflow.AdvanceOptions{}))
	rec.reset()

	err := manager.Complete(context.Background(), "cand-1", "job-1", "recruiter@acme.test", map[string]any{"offer_accepted": true})
	require.NoError(t, err)

	instance, err := manager.InstanceByPair(context.Background(), "cand-1", "job-1")
	require.NoError(t, err)

	assert.Equal(t, models.InstanceStatusCompleted, instance.Status)
	require.NotNil(t, instance.CompletedAt)
	assert.Equal(t, true, instance.Metadata["offer_accepted"])

	require.Len(t, rec.events, 1)
	completed, ok := rec.events[0].(events.WorkflowCompleted)
	require.True(t, ok)
	assert.Equal(t, "stage-offer", completed.FinalStageID)
}

func TestPauseBlocksTransitionsUntilResume(t *testing.T) {
	manager, _, _ := newTestManager(t, hiringDefinition())
	startInstance(t, manager)

	require.NoError(t, manager.Pause(context.Background(), "cand-1", "job-1", "recruiter@acme.test"))

	err := manager.AdvanceTo(context.Background(), "cand-1", "job-1", "stage-interview", workflow.AdvanceOptions{})
	require.ErrorIs(t, err, workflow.ErrNoActiveInstance)

	err = manager.Pause(context.Background(), "cand-1", "job-1", "recruiter@acme.test")
	require.ErrorIs(t, err, workflow.ErrNoActiveInstance)

	require.NoError(t, manager.Resume(context.Background(), "cand-1", "job-1", "recruiter@acme.test"))

	instance, err := manager.InstanceByPair(context.Background(), "cand-1", "job-1")
	require.NoError(t, err)
	assert.Equal(t, models.InstanceStatusActive, instance.Status)
	assert.Nil(t, instance.PausedAt)

	require.NoError(t, manager.AdvanceTo(context.Background(), "cand-1", "job-1", "stage-interview", workflow.AdvanceOptions{}))
}

func TestResumeRequiresPausedInstance(t *testing.T) {
	manager, _, _ := newTestManager(t, hiringDefinition())
	startInstance(t, manager)

	err := manager.Resume(context.Background(), "cand-1", "job-1", "recruiter@acme.test")
	require.ErrorIs(t, err, workflow.ErrNotPaused)

	err = manager.Resume(context.Background(), "cand-2", "job-1", "recruiter@acme.test")
	require.ErrorIs(t, err, workflow.ErrNoActiveInstance)
}

func TestExecuteManualActionEmitsActionTriggered(t *testing.T) {
	manager, _, rec := newTestManager(t, hiringDefinition())
	startInstance(t, manager)
	rec.reset()

	err := manager.ExecuteManualAction(context.Background(), "cand-1", "job-1", models.ActionSendEmail,
		map[string]any{"template": "follow_up"}, "recruiter@acme.test")
	require.NoError(t, err)

	require.Len(t, rec.events, 1)
	triggered, ok := rec.events[0].(events.ActionTriggered)
	require.True(t, ok)
	assert.Equal(t, models.ActionSendEmail, triggered.ActionType)
	assert.Equal(t, models.TriggerManual, triggered.Trigger)
	assert.Equal(t, "stage-screening", triggered.StageID)
	assert.Equal(t, "follow_up", triggered.Config["template"])
}

func TestExecuteManualActionRejectsUnknownType(t *testing.T) {
	manager, _, _ := newTestManager(t, hiringDefinition())
	startInstance(t, manager)

	err := manager.ExecuteManualAction(context.Background(), "cand-1", "job-1", models.ActionType("mint_nft"), nil, "recruiter@acme.test")
	require.Error(t, err)
}

func TestAutoAdvanceWaitsForApprovalThenCascades(t *testing.T) {
	definition := hiringDefinition()
	definition.Stages[0].AutoAdvance = true
	definition.Stages[0].Requirements = []models.Requirement{
		{Type: models.RequirementManualApproval},
	}

	manager, store, rec := newTestManager(t, definition)
	instance := startInstance(t, manager)

	// No approval on record: start must leave the instance at screening.
	assert.Equal(t, "stage-screening", instance.CurrentStageID)
	assert.Equal(t, []events.EventType{events.StageEnteredEvent}, rec.types())

	advanced, err := manager.EvaluateAutoAdvance(context.Background(), "cand-1", "job-1")
	require.NoError(t, err)
	assert.False(t, advanced)

	require.NoError(t, store.SaveApproval(context.Background(), &models.Approval{
		CandidateID: "cand-1",
		JobID:       "job-1",
		StageID:     "stage-screening",
		Granted:     true,
		ApprovedBy:  "hiring-manager@acme.test",
	}))
	rec.reset()

	advanced, err = manager.EvaluateAutoAdvance(context.Background(), "cand-1", "job-1")
	require.NoError(t, err)
	assert.True(t, advanced)

	stored, err := manager.InstanceByPair(context.Background(), "cand-1", "job-1")
	require.NoError(t, err)
	assert.Equal(t, "stage-interview", stored.CurrentStageID)

	require.Len(t, rec.events, 3)
	moved, ok := rec.events[1].(events.CandidateAdvanced)
	require.True(t, ok)
	assert.Equal(t, workflow.SystemActor, moved.TriggeredBy)
	assert.Equal(t, "stage-screening", moved.FromStageID)
	assert.Equal(t, "stage-interview", moved.ToStageID)
}

func TestAutoAdvanceCascadesThroughRequirementlessStages(t *testing.T) {
	definition := hiringDefinition()
	definition.Stages[0].AutoAdvance = true
	definition.Stages[1].AutoAdvance = true

	manager, _, _ := newTestManager(t, definition)
	instance := startInstance(t, manager)

	// Stages without requirements are trivially satisfied, so start lands on
	// the first stage that does not auto-advance.
	assert.Equal(t, "stage-offer", instance.CurrentStageID)
	require.Len(t, instance.History, 3)

	open, ok := instance.OpenHistoryEntry()
	require.True(t, ok)
	assert.Equal(t, "stage-offer", open.StageID)

	for _, entry := range instance.History[:2] {
		require.NotNil(t, entry.ExitedAt)
	}
}

func TestAutoAdvanceSatisfiedOnFinalStageStays(t *testing.T) {
	definition := hiringDefinition()
	definition.Stages[2].AutoAdvance = true

	manager, _, _ := newTestManager(t, definition)
	startInstance(t, manager)

	require.NoError(t, manager.AdvanceTo(context.Background(), "cand-1", "job-1", "stage-offer", workflow.AdvanceOptions{}))

	advanced, err := manager.EvaluateAutoAdvance(context.Background(), "cand-1", "job-1")
	require.NoError(t, err)
	assert.False(t, advanced)

	instance, err := manager.InstanceByPair(context.Background(), "cand-1", "job-1")
	require.NoError(t, err)
	assert.Equal(t, models.InstanceStatusActive, instance.Status)
	assert.Equal(t, "stage-offer", instance.CurrentStageID)
}
