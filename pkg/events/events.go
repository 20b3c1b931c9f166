// Package events defines the typed lifecycle events emitted by the workflow
// instance manager.
package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/hireflow/hireflow/pkg/models"
)

type EventType string

// Relay topic and message metadata keys.
const Topic = "hireflow.workflow.events"

const EventKeyMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	StageEnteredEvent      EventType = "stage_entered"
	StageExitedEvent       EventType = "stage_exited"
	CandidateAdvancedEvent EventType = "candidate_advanced"
	CandidateRejectedEvent EventType = "candidate_rejected"
	WorkflowCompletedEvent EventType = "workflow_completed"
	ActionTriggeredEvent   EventType = "action_triggered"
)

// BaseEvent carries the identity shared by every lifecycle event. Events are
// ephemeral: dispatched once, consumed synchronously, never persisted.
type BaseEvent struct {
	ID          string         `json:"id"`
	Type        EventType      `json:"type"`
	Timestamp   time.Time      `json:"timestamp"`
	CandidateID string         `json:"candidate_id"`
	JobID       string         `json:"job_id"`
	CompanyID   string         `json:"company_id"`
	WorkflowID  string         `json:"workflow_id"`
	TriggeredBy string         `json:"triggered_by,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// PairKey identifies the (candidate, job) pair the event belongs to. Events
// sharing a pair key are delivered in emission order.
func (e BaseEvent) PairKey() string {
	return e.CandidateID + ":" + e.JobID
}

// StageEntered is emitted when an instance enters a stage. It carries the
// full stage metadata so handlers do not need a second definition lookup.
type StageEntered struct {
	BaseEvent

	StageID      string               `json:"stage_id"`
	StageName    string               `json:"stage_name"`
	StageOrder   int                  `json:"stage_order"`
	AutoAdvance  bool                 `json:"auto_advance"`
	Actions      []models.Action      `json:"actions,omitempty"`
	Requirements []models.Requirement `json:"requirements,omitempty"`
}

func (e StageEntered) GetType() EventType {
	return StageEnteredEvent
}

// StageExited is emitted when an instance leaves a stage, carrying the same
// stage metadata plus the recorded exit data.
type StageExited struct {
	BaseEvent

	StageID    string              `json:"stage_id"`
	StageName  string              `json:"stage_name"`
	StageOrder int                 `json:"stage_order"`
	Actions    []models.Action     `json:"actions,omitempty"`
	Outcome    models.StageOutcome `json:"outcome"`
	Feedback   string              `json:"feedback,omitempty"`
	Score      *float64            `json:"score,omitempty"`
}

func (e StageExited) GetType() EventType {
	return StageExitedEvent
}

type CandidateAdvanced struct {
	BaseEvent

	FromStageID  string   `json:"from_stage_id"`
	ToStageID    string   `json:"to_stage_id"`
	ToStageOrder int      `json:"to_stage_order"`
	Reason       string   `json:"reason,omitempty"`
	Feedback     string   `json:"feedback,omitempty"`
	Score        *float64 `json:"score,omitempty"`
}

func (e CandidateAdvanced) GetType() EventType {
	return CandidateAdvancedEvent
}

type CandidateRejected struct {
	BaseEvent

	StageID  string `json:"stage_id"`
	Reason   string `json:"reason,omitempty"`
	Feedback string `json:"feedback,omitempty"`
}

func (e CandidateRejected) GetType() EventType {
	return CandidateRejectedEvent
}

type WorkflowCompleted struct {
	BaseEvent

	FinalStageID string `json:"final_stage_id"`
}

func (e WorkflowCompleted) GetType() EventType {
	return WorkflowCompletedEvent
}

// ActionTriggered is emitted for manually requested actions, bypassing the
// stage entry/exit bookkeeping.
type ActionTriggered struct {
	BaseEvent

	StageID    string               `json:"stage_id,omitempty"`
	ActionType models.ActionType    `json:"action_type"`
	Config     map[string]any       `json:"config,omitempty"`
	Trigger    models.ActionTrigger `json:"trigger"`
}

func (e ActionTriggered) GetType() EventType {
	return ActionTriggeredEvent
}

// NewBaseEvent stamps a fresh event identity for the given pair.
func NewBaseEvent(eventType EventType, instance *models.WorkflowInstance, triggeredBy string) BaseEvent {
	return BaseEvent{
		ID:          uuid.New().String(),
		Type:        eventType,
		Timestamp:   time.Now().UTC(),
		CandidateID: instance.CandidateID,
		JobID:       instance.JobID,
		CompanyID:   instance.CompanyID,
		WorkflowID:  instance.WorkflowID,
		TriggeredBy: triggeredBy,
		Metadata:    make(map[string]any),
	}
}
