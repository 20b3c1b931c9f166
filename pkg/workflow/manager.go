// Package workflow implements the instance manager: the state machine that
// owns the lifecycle of workflow instances, performs stage bookkeeping, and
// is the only emitter of lifecycle events.
package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hireflow/hireflow/pkg/eventbus"
	"github.com/hireflow/hireflow/pkg/events"
	"github.com/hireflow/hireflow/pkg/models"
	"github.com/hireflow/hireflow/pkg/persistence"
)

// SystemActor attributes transitions performed by the engine itself, such as
// auto-advance.
const SystemActor = "system"

// Manager is the single writer of workflow instance state. All mutations of
// one (candidate, job) pair are serialized through a per-pair lock.
type Manager struct {
	store     persistence.Persistence
	bus       eventbus.EventBus
	evaluator *Evaluator
	locks     *pairLocks
	logger    *slog.Logger
}

func NewManager(store persistence.Persistence, bus eventbus.EventBus, evaluator *Evaluator, logger *slog.Logger) *Manager {
	return &Manager{
		store:     store,
		bus:       bus,
		evaluator: evaluator,
		locks:     newPairLocks(),
		logger:    logger.With("module", "workflow_manager"),
	}
}

// StartParams identifies the pair and definition a new instance binds.
type StartParams struct {
	CandidateID   string
	JobID         string
	CompanyID     string
	WorkflowID    string
	TriggeredBy   string
	Metadata      map[string]any
	ReuseExisting bool
}

// Start creates an instance for the pair, places it at the lowest-order
// stage, and performs stage entry. When an active instance already exists it
// returns ErrAlreadyActive, unless ReuseExisting asks for the idempotent
// return of the existing instance.
func (m *Manager) Start(ctx context.Context, params StartParams) (*models.WorkflowInstance, error) {
	unlock := m.locks.acquire(params.CandidateID, params.JobID)
	defer unlock()

	definition, err := m.store.DefinitionByID(ctx, params.WorkflowID)
	if err != nil {
		return nil, err
	}

	if err := definition.Validate(); err != nil {
		return nil, err
	}

	existing, err := m.store.InstanceByPair(ctx, params.CandidateID, params.JobID)
	if err != nil && !persistence.IsInstanceNotFound(err) {
		return nil, err
	}

	if existing != nil && !existing.IsTerminal() {
		if params.ReuseExisting {
			return existing, nil
		}

		return nil, ErrAlreadyActive
	}

	entry, _ := definition.EntryStage()
	now := time.Now()

	instance := &models.WorkflowInstance{
		ID:          uuid.NewString(),
		CandidateID: params.CandidateID,
		JobID:       params.JobID,
		CompanyID:   params.CompanyID,
		WorkflowID:  definition.ID,
		Status:      models.InstanceStatusActive,
		StartedAt:   now,
		Metadata:    params.Metadata,
	}
	instance.EnterStage(entry, now)

	if err := m.store.SaveInstance(ctx, instance); err != nil {
		if persistence.IsInstanceAlreadyExists(err) {
			return nil, ErrAlreadyActive
		}

		return nil, err
	}

	m.logger.InfoContext(ctx, "Workflow instance started",
		"candidate_id", instance.CandidateID, "job_id", instance.JobID,
		"workflow_id", instance.WorkflowID, "stage_id", entry.ID)

	m.emitStageEntered(ctx, instance, entry, params.TriggeredBy)
	m.autoAdvance(ctx, definition, instance)

	return instance, nil
}

// AdvanceOptions tunes one advance call.
type AdvanceOptions struct {
	SkipValidation bool
	Reason         string
	Feedback       string
	Score          *float64
	TriggeredBy    string
}

// AdvanceTo moves the instance to the target stage: stage exit on the current
// stage, stage entry on the target. Default validation requires the target
// order to be strictly greater than the current order.
func (m *Manager) AdvanceTo(ctx context.Context, candidateID, jobID, targetStageID string, opts AdvanceOptions) error {
	unlock := m.locks.acquire(candidateID, jobID)
	defer unlock()

	instance, definition, err := m.loadActive(ctx, candidateID, jobID)
	if err != nil {
		return err
	}

	return m.advanceLocked(ctx, definition, instance, targetStageID, opts)
}

// advanceLocked performs the exit/enter sequence. Callers hold the pair lock.
func (m *Manager) advanceLocked(ctx context.Context, definition *models.WorkflowDefinition, instance *models.WorkflowInstance, targetStageID string, opts AdvanceOptions) error {
	target, ok := definition.StageByID(targetStageID)
	if !ok {
		return ErrStageNotFound
	}

	if !opts.SkipValidation && target.Order <= instance.CurrentStageOrder {
		return ErrInvalidOrder
	}

	current, _ := definition.StageByID(instance.CurrentStageID)

	// Leaving a required stage demands its requirements hold, the same
	// checks auto-advance runs. SkipValidation is the manual override.
	if !opts.SkipValidation && current != nil && current.IsRequired && len(current.Requirements) > 0 {
		satisfied, err := m.evaluator.Satisfied(ctx, instance, current)
		if err != nil {
			return err
		}

		if !satisfied {
			return ErrRequirementsNotMet
		}
	}

	fromStageID := instance.CurrentStageID
	now := time.Now()

	instance.ExitStage(now, models.OutcomePassed, opts.Feedback, opts.Score)
	instance.EnterStage(target, now)

	if err := m.store.UpdateInstance(ctx, instance); err != nil {
		return err
	}

	m.logger.InfoContext(ctx, "Candidate advanced",
		"candidate_id", instance.CandidateID, "job_id", instance.JobID,
		"from_stage", fromStageID, "to_stage", target.ID, "triggered_by", opts.TriggeredBy)

	if current != nil {
		exited := events.StageExited{
			BaseEvent:  events.NewBaseEvent(events.StageExitedEvent, instance, opts.TriggeredBy),
			StageID:    current.ID,
			StageName:  current.Name,
			StageOrder: current.Order,
			Actions:    current.ActionsFor(models.TriggerOnExit),
			Outcome:    models.OutcomePassed,
			Feedback:   opts.Feedback,
			Score:      opts.Score,
		}
		m.publish(ctx, exited)
	}

	advanced := events.CandidateAdvanced{
		BaseEvent:    events.NewBaseEvent(events.CandidateAdvancedEvent, instance, opts.TriggeredBy),
		FromStageID:  fromStageID,
		ToStageID:    target.ID,
		ToStageOrder: target.Order,
		Reason:       opts.Reason,
		Feedback:     opts.Feedback,
		Score:        opts.Score,
	}
	m.publish(ctx, advanced)

	m.emitStageEntered(ctx, instance, target, opts.TriggeredBy)
	m.autoAdvance(ctx, definition, instance)

	return nil
}

// Reject terminates the instance with the rejected status. Rejecting a
// non-active instance is an error, not a silent no-op.
func (m *Manager) Reject(ctx context.Context, candidateID, jobID, reason, feedback, triggeredBy string) error {
	unlock := m.locks.acquire(candidateID, jobID)
	defer unlock()

	instance, _, err := m.loadActive(ctx, candidateID, jobID)
	if err != nil {
		return err
	}

	now := time.Now()
	instance.ExitStage(now, models.OutcomeFailed, feedback, nil)
	instance.Status = models.InstanceStatusRejected
	instance.RejectedAt = &now

	if err := m.store.UpdateInstance(ctx, instance); err != nil {
		return err
	}

	m.logger.InfoContext(ctx, "Candidate rejected",
		"candidate_id", candidateID, "job_id", jobID, "reason", reason, "triggered_by", triggeredBy)

	rejected := events.CandidateRejected{
		BaseEvent: events.NewBaseEvent(events.CandidateRejectedEvent, instance, triggeredBy),
		StageID:   instance.CurrentStageID,
		Reason:    reason,
		Feedback:  feedback,
	}
	m.publish(ctx, rejected)

	return nil
}

// Complete terminates the instance with the completed status.
func (m *Manager) Complete(ctx context.Context, candidateID, jobID, triggeredBy string, metadata map[string]any) error {
	unlock := m.locks.acquire(candidateID, jobID)
	defer unlock()

	instance, _, err := m.loadActive(ctx, candidateID, jobID)
	if err != nil {
		return err
	}

	now := time.Now()
	instance.ExitStage(now, models.OutcomePassed, "", nil)
	instance.Status = models.InstanceStatusCompleted
	instance.CompletedAt = &now

	for k, v := range metadata {
		if instance.Metadata == nil {
			instance.Metadata = make(map[string]any)
		}

		instance.Metadata[k] = v
	}

	if err := m.store.UpdateInstance(ctx, instance); err != nil {
		return err
	}

	m.logger.InfoContext(ctx, "Workflow completed",
		"candidate_id", candidateID, "job_id", jobID, "triggered_by", triggeredBy)

	completed := events.WorkflowCompleted{
		BaseEvent:    events.NewBaseEvent(events.WorkflowCompletedEvent, instance, triggeredBy),
		FinalStageID: instance.CurrentStageID,
	}
	m.publish(ctx, completed)

	return nil
}

// Pause stops future transitions. Jobs already enqueued for prior stage
// actions still execute to completion.
func (m *Manager) Pause(ctx context.Context, candidateID, jobID, triggeredBy string) error {
	unlock := m.locks.acquire(candidateID, jobID)
	defer unlock()

	instance, _, err := m.loadActive(ctx, candidateID, jobID)
	if err != nil {
		return err
	}

	now := time.Now()
	instance.Status = models.InstanceStatusPaused
	instance.PausedAt = &now

	if err := m.store.UpdateInstance(ctx, instance); err != nil {
		return err
	}

	m.logger.InfoContext(ctx, "Workflow paused",
		"candidate_id", candidateID, "job_id", jobID, "triggered_by", triggeredBy)

	return nil
}

// Resume re-enables transitions on a paused instance.
func (m *Manager) Resume(ctx context.Context, candidateID, jobID, triggeredBy string) error {
	unlock := m.locks.acquire(candidateID, jobID)
	defer unlock()

	instance, err := m.store.InstanceByPair(ctx, candidateID, jobID)
	if err != nil {
		if persistence.IsInstanceNotFound(err) {
			return ErrNoActiveInstance
		}

		return err
	}

	if instance.Status != models.InstanceStatusPaused {
		return ErrNotPaused
	}

	instance.Status = models.InstanceStatusActive
	instance.PausedAt = nil

	if err := m.store.UpdateInstance(ctx, instance); err != nil {
		return err
	}

	m.logger.InfoContext(ctx, "Workflow resumed",
		"candidate_id", candidateID, "job_id", jobID, "triggered_by", triggeredBy)

	return nil
}

// ExecuteManualAction emits action_triggered for the given action, bypassing
// stage entry/exit bookkeeping.
func (m *Manager) ExecuteManualAction(ctx context.Context, candidateID, jobID string, actionType models.ActionType, config map[string]any, triggeredBy string) error {
	unlock := m.locks.acquire(candidateID, jobID)
	defer unlock()

	if !actionType.Valid() {
		return fmt.Errorf("unknown action type %s", actionType)
	}

	instance, _, err := m.loadActive(ctx, candidateID, jobID)
	if err != nil {
		return err
	}

	triggered := events.ActionTriggered{
		BaseEvent:  events.NewBaseEvent(events.ActionTriggeredEvent, instance, triggeredBy),
		StageID:    instance.CurrentStageID,
		ActionType: actionType,
		Config:     config,
		Trigger:    models.TriggerManual,
	}
	m.publish(ctx, triggered)

	return nil
}

// EvaluateAutoAdvance re-runs requirement evaluation for the current stage,
// advancing when every requirement holds. It reports whether a transition
// happened. Callers invoke it when an external record changes, such as an
// approval being granted.
func (m *Manager) EvaluateAutoAdvance(ctx context.Context, candidateID, jobID string) (bool, error) {
	unlock := m.locks.acquire(candidateID, jobID)
	defer unlock()

	instance, definition, err := m.loadActive(ctx, candidateID, jobID)
	if err != nil {
		return false, err
	}

	return m.evaluateAutoAdvanceLocked(ctx, definition, instance)
}

// InstanceByPair exposes the stored instance for read-only callers.
func (m *Manager) InstanceByPair(ctx context.Context, candidateID, jobID string) (*models.WorkflowInstance, error) {
	return m.store.InstanceByPair(ctx, candidateID, jobID)
}

// loadActive loads the instance and its definition and verifies the instance
// accepts transitions.
func (m *Manager) loadActive(ctx context.Context, candidateID, jobID string) (*models.WorkflowInstance, *models.WorkflowDefinition, error) {
	instance, err := m.store.InstanceByPair(ctx, candidateID, jobID)
	if err != nil {
		if persistence.IsInstanceNotFound(err) {
			return nil, nil, ErrNoActiveInstance
		}

		return nil, nil, err
	}

	if instance.Status != models.InstanceStatusActive {
		return nil, nil, ErrNoActiveInstance
	}

	definition, err := m.store.DefinitionByID(ctx, instance.WorkflowID)
	if err != nil {
		return nil, nil, err
	}

	return instance, definition, nil
}

func (m *Manager) emitStageEntered(ctx context.Context, instance *models.WorkflowInstance, stage *models.Stage, triggeredBy string) {
	entered := events.StageEntered{
		BaseEvent:    events.NewBaseEvent(events.StageEnteredEvent, instance, triggeredBy),
		StageID:      stage.ID,
		StageName:    stage.Name,
		StageOrder:   stage.Order,
		AutoAdvance:  stage.AutoAdvance,
		Actions:      stage.Actions,
		Requirements: stage.Requirements,
	}
	m.publish(ctx, entered)
}

// autoAdvance evaluates the current stage after entry and cascades while
// requirements keep holding. Evaluation failures are logged, never
// propagated: the transition that got us here is already committed.
func (m *Manager) autoAdvance(ctx context.Context, definition *models.WorkflowDefinition, instance *models.WorkflowInstance) {
	if _, err := m.evaluateAutoAdvanceLocked(ctx, definition, instance); err != nil {
		m.logger.ErrorContext(ctx, "Auto-advance evaluation failed",
			"candidate_id", instance.CandidateID, "job_id", instance.JobID,
			"stage_id", instance.CurrentStageID, "error", err)
	}
}

func (m *Manager) evaluateAutoAdvanceLocked(ctx context.Context, definition *models.WorkflowDefinition, instance *models.WorkflowInstance) (bool, error) {
	stage, ok := definition.StageByID(instance.CurrentStageID)
	if !ok {
		return false, ErrStageNotFound
	}

	if !stage.AutoAdvance {
		return false, nil
	}

	satisfied, err := m.evaluator.Satisfied(ctx, instance, stage)
	if err != nil || !satisfied {
		return false, err
	}

	next, ok := definition.NextStage(stage.Order)
	if !ok {
		m.logger.DebugContext(ctx, "Auto-advance satisfied on final stage, nothing to advance to",
			"candidate_id", instance.CandidateID, "stage_id", stage.ID)

		return false, nil
	}

	err = m.advanceLocked(ctx, definition, instance, next.ID, AdvanceOptions{
		Reason:      "auto-advance: all stage requirements satisfied",
		TriggeredBy: SystemActor,
	})
	if err != nil {
		return false, err
	}

	return true, nil
}

// publish dispatches an event. Handler failures are logged and never unwind
// the committed transition.
func (m *Manager) publish(ctx context.Context, event eventbus.Event) {
	if err := m.bus.Publish(ctx, event); err != nil {
		m.logger.WarnContext(ctx, "One or more event handlers failed",
			"event_type", event.GetType(), "error", err)
	}
}
