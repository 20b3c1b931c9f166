package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hireflow/hireflow/pkg/eventbus"
	"github.com/hireflow/hireflow/pkg/events"
	"github.com/hireflow/hireflow/pkg/models"
	"github.com/hireflow/hireflow/pkg/persistence"
	"github.com/hireflow/hireflow/pkg/queue"
)

// Handlers translates lifecycle events into queued action jobs and
// notifications. It never mutates instance state.
type Handlers struct {
	store    persistence.Persistence
	enqueuer queue.Enqueuer
	logger   *slog.Logger
}

func NewHandlers(store persistence.Persistence, enqueuer queue.Enqueuer, logger *slog.Logger) *Handlers {
	return &Handlers{
		store:    store,
		enqueuer: enqueuer,
		logger:   logger.With("module", "workflow_handlers"),
	}
}

// Attach registers every handler on the bus.
func (h *Handlers) Attach(bus eventbus.EventBus) {
	bus.Handle(events.StageEnteredEvent, h.onStageEntered)
	bus.Handle(events.StageExitedEvent, h.onStageExited)
	bus.Handle(events.CandidateAdvancedEvent, h.onCandidateAdvanced)
	bus.Handle(events.CandidateRejectedEvent, h.onCandidateRejected)
	bus.Handle(events.WorkflowCompletedEvent, h.onWorkflowCompleted)
	bus.Handle(events.ActionTriggeredEvent, h.onActionTriggered)
}

func refsFor(base events.BaseEvent, stageID string) models.TargetRefs {
	return models.TargetRefs{
		CandidateID: base.CandidateID,
		JobID:       base.JobID,
		CompanyID:   base.CompanyID,
		WorkflowID:  base.WorkflowID,
		StageID:     stageID,
	}
}

func (h *Handlers) onStageEntered(ctx context.Context, event eventbus.Event) error {
	entered, ok := event.(events.StageEntered)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.GetType())
	}

	refs := refsFor(entered.BaseEvent, entered.StageID)

	if err := h.enqueueActions(ctx, refs, entered.Actions, models.TriggerOnEnter, entered.TriggeredBy); err != nil {
		return err
	}

	return h.notifyStageChange(ctx, refs, entered)
}

func (h *Handlers) onStageExited(ctx context.Context, event eventbus.Event) error {
	exited, ok := event.(events.StageExited)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.GetType())
	}

	refs := refsFor(exited.BaseEvent, exited.StageID)

	return h.enqueueActions(ctx, refs, exited.Actions, models.TriggerOnExit, exited.TriggeredBy)
}

func (h *Handlers) onCandidateAdvanced(ctx context.Context, event eventbus.Event) error {
	advanced, ok := event.(events.CandidateAdvanced)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.GetType())
	}

	refs := refsFor(advanced.BaseEvent, advanced.ToStageID)

	return h.notifyCandidate(ctx, refs, models.NotifyCandidateAdvanced, map[string]any{
		"from_stage": advanced.FromStageID,
		"to_stage":   advanced.ToStageID,
		"reason":     advanced.Reason,
	})
}

func (h *Handlers) onCandidateRejected(ctx context.Context, event eventbus.Event) error {
	rejected, ok := event.(events.CandidateRejected)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.GetType())
	}

	refs := refsFor(rejected.BaseEvent, rejected.StageID)

	// The rejection email goes through the action pipeline, not directly.
	_, err := h.enqueuer.AddWorkflowActionJob(ctx, refs, queue.WorkflowActionPayload{
		ActionType: models.ActionSendEmail,
		Trigger:    models.TriggerOnExit,
		Config: map[string]any{
			"template": "rejection",
			"variables": map[string]any{
				"reason":   rejected.Reason,
				"feedback": rejected.Feedback,
			},
		},
	}, rejected.TriggeredBy)
	if err != nil {
		return fmt.Errorf("failed to enqueue rejection email action: %w", err)
	}

	return h.notifyCandidate(ctx, refs, models.NotifyCandidateRejected, map[string]any{
		"reason": rejected.Reason,
	})
}

func (h *Handlers) onWorkflowCompleted(ctx context.Context, event eventbus.Event) error {
	completed, ok := event.(events.WorkflowCompleted)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.GetType())
	}

	refs := refsFor(completed.BaseEvent, completed.FinalStageID)

	if err := h.notifyCandidate(ctx, refs, models.NotifyWorkflowCompleted, nil); err != nil {
		return err
	}

	// Second notification without explicit recipient lands with the hiring
	// manager, the initiating side of the pipeline.
	_, err := h.enqueuer.AddNotificationJob(ctx, refs, queue.NotificationPayload{
		NotificationType: models.NotifyWorkflowCompleted,
		Variables: map[string]any{
			"final_stage":  completed.FinalStageID,
			"triggered_by": completed.TriggeredBy,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to enqueue completion notification: %w", err)
	}

	return nil
}

func (h *Handlers) onActionTriggered(ctx context.Context, event eventbus.Event) error {
	triggered, ok := event.(events.ActionTriggered)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.GetType())
	}

	refs := refsFor(triggered.BaseEvent, triggered.StageID)

	_, err := h.enqueuer.AddWorkflowActionJob(ctx, refs, queue.WorkflowActionPayload{
		ActionType: triggered.ActionType,
		Trigger:    triggered.Trigger,
		Config:     triggered.Config,
	}, triggered.TriggeredBy)
	if err != nil {
		return fmt.Errorf("failed to enqueue manual action: %w", err)
	}

	return nil
}

func (h *Handlers) enqueueActions(ctx context.Context, refs models.TargetRefs, actions []models.Action, trigger models.ActionTrigger, triggeredBy string) error {
	for _, action := range actions {
		if action.Trigger != trigger {
			continue
		}

		_, err := h.enqueuer.AddWorkflowActionJob(ctx, refs, queue.WorkflowActionPayload{
			ActionType: action.Type,
			Trigger:    action.Trigger,
			Config:     action.Config,
		}, triggeredBy)
		if err != nil {
			return fmt.Errorf("failed to enqueue %s action: %w", action.Type, err)
		}
	}

	return nil
}

// notifyStageChange fans the stage-change notification out to the candidate
// and, when the posting names one, the hiring manager.
func (h *Handlers) notifyStageChange(ctx context.Context, refs models.TargetRefs, entered events.StageEntered) error {
	variables := map[string]any{
		"stage_id":   entered.StageID,
		"stage_name": entered.StageName,
	}

	if err := h.notifyCandidate(ctx, refs, models.NotifyStageChange, variables); err != nil {
		return err
	}

	posting, err := h.store.JobPostingByID(ctx, refs.JobID)
	if err != nil {
		h.logger.WarnContext(ctx, "Job posting unavailable, skipping hiring manager notification",
			"job_id", refs.JobID, "error", err)

		return nil
	}

	if posting.HiringManagerEmail == "" {
		return nil
	}

	_, err = h.enqueuer.AddNotificationJob(ctx, refs, queue.NotificationPayload{
		NotificationType: models.NotifyStageChange,
		RecipientEmail:   posting.HiringManagerEmail,
		RecipientName:    posting.HiringManagerName,
		Variables:        variables,
	})
	if err != nil {
		return fmt.Errorf("failed to enqueue hiring manager notification: %w", err)
	}

	return nil
}

func (h *Handlers) notifyCandidate(ctx context.Context, refs models.TargetRefs, notificationType models.NotificationType, variables map[string]any) error {
	candidate, err := h.store.CandidateByID(ctx, refs.CandidateID)
	if err != nil {
		h.logger.WarnContext(ctx, "Candidate unavailable, skipping notification",
			"candidate_id", refs.CandidateID, "error", err)

		return nil
	}

	_, err = h.enqueuer.AddNotificationJob(ctx, refs, queue.NotificationPayload{
		NotificationType: notificationType,
		RecipientEmail:   candidate.Email,
		RecipientName:    candidate.FullName(),
		Variables:        variables,
	})
	if err != nil {
		return fmt.Errorf("failed to enqueue candidate notification: %w", err)
	}

	return nil
}
