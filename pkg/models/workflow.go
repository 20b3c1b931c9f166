// Package models defines the core domain models for the hiring workflow engine.
package models

import (
	"errors"
	"sort"
	"time"
)

// ActionType identifies the kind of side-effecting action attached to a stage.
type ActionType string

const (
	ActionSendEmail           ActionType = "send_email"
	ActionScheduleInterview   ActionType = "schedule_interview"
	ActionAssignAssessment    ActionType = "assign_assessment"
	ActionVerifyAssessment    ActionType = "verify_assessment"
	ActionAddCalendarEvent    ActionType = "add_calendar_event"
	ActionGenerateOfferLetter ActionType = "generate_offer_letter"
)

// ActionTypes lists every known action type, in a stable order.
func ActionTypes() []ActionType {
	return []ActionType{
		ActionSendEmail,
		ActionScheduleInterview,
		ActionAssignAssessment,
		ActionVerifyAssessment,
		ActionAddCalendarEvent,
		ActionGenerateOfferLetter,
	}
}

// Valid reports whether the action type is one of the known kinds.
func (t ActionType) Valid() bool {
	for _, known := range ActionTypes() {
		if t == known {
			return true
		}
	}

	return false
}

// ActionTrigger determines when an attached action fires.
type ActionTrigger string

const (
	TriggerOnEnter ActionTrigger = "on_enter"
	TriggerOnExit  ActionTrigger = "on_exit"
	TriggerManual  ActionTrigger = "manual"
)

// RequirementType identifies a predicate gating auto-advance.
type RequirementType string

const (
	RequirementInterviewComplete RequirementType = "interview_complete"
	RequirementAssessmentPassed  RequirementType = "assessment_passed"
	RequirementManualApproval    RequirementType = "manual_approval"
	RequirementAIScreeningPassed RequirementType = "ai_screening_passed"
)

// Action is a side-effecting operation attached to a stage.
type Action struct {
	Type    ActionType     `json:"type"    validate:"required"`
	Config  map[string]any `json:"config,omitempty"`
	Trigger ActionTrigger  `json:"trigger" validate:"required,oneof=on_enter on_exit manual"`
}

// Requirement is a boolean predicate a stage must satisfy before auto-advance.
type Requirement struct {
	Type   RequirementType `json:"type" validate:"required"`
	Config map[string]any  `json:"config,omitempty"`
}

// Stage is one step of a workflow definition.
type Stage struct {
	ID           string        `json:"id"    validate:"required"`
	Name         string        `json:"name"  validate:"required"`
	Type         string        `json:"type"`
	Order        int           `json:"order" validate:"min=1"`
	IsRequired   bool          `json:"is_required"`
	AutoAdvance  bool          `json:"auto_advance"`
	Actions      []Action      `json:"actions,omitempty"`
	Requirements []Requirement `json:"requirements,omitempty"`
}

// ActionsFor returns the stage actions attached to the given trigger.
func (s *Stage) ActionsFor(trigger ActionTrigger) []Action {
	actions := make([]Action, 0, len(s.Actions))

	for _, action := range s.Actions {
		if action.Trigger == trigger {
			actions = append(actions, action)
		}
	}

	return actions
}

// WorkflowDefinition is the immutable per-version template of ordered stages
// shared by many instances.
type WorkflowDefinition struct {
	ID        string    `json:"id"         validate:"required"`
	CompanyID string    `json:"company_id" validate:"required"`
	Name      string    `json:"name"       validate:"required,min=3"`
	Version   int       `json:"version"`
	Stages    []Stage   `json:"stages"     validate:"required,min=1,dive"`
	CreatedAt time.Time `json:"created_at"`
}

var (
	// ErrNoStages indicates a definition without any stages.
	ErrNoStages = errors.New("workflow definition has no stages")

	// ErrDuplicateStageOrder indicates two stages share the same order value.
	ErrDuplicateStageOrder = errors.New("workflow definition has duplicate stage order")

	// ErrDuplicateStageID indicates two stages share the same identifier.
	ErrDuplicateStageID = errors.New("workflow definition has duplicate stage id")
)

// Validate checks the structural invariants of the definition: at least one
// stage, unique stage ids, and unique order values.
func (d *WorkflowDefinition) Validate() error {
	if len(d.Stages) == 0 {
		return ErrNoStages
	}

	seenOrders := make(map[int]struct{}, len(d.Stages))
	seenIDs := make(map[string]struct{}, len(d.Stages))

	for _, stage := range d.Stages {
		if _, dup := seenOrders[stage.Order]; dup {
			return ErrDuplicateStageOrder
		}

		if _, dup := seenIDs[stage.ID]; dup {
			return ErrDuplicateStageID
		}

		seenOrders[stage.Order] = struct{}{}
		seenIDs[stage.ID] = struct{}{}
	}

	return nil
}

// EntryStage returns the lowest-order stage.
func (d *WorkflowDefinition) EntryStage() (*Stage, bool) {
	if len(d.Stages) == 0 {
		return nil, false
	}

	entry := &d.Stages[0]
	for i := range d.Stages {
		if d.Stages[i].Order < entry.Order {
			entry = &d.Stages[i]
		}
	}

	return entry, true
}

// StageByID returns the stage with the given id.
func (d *WorkflowDefinition) StageByID(stageID string) (*Stage, bool) {
	for i := range d.Stages {
		if d.Stages[i].ID == stageID {
			return &d.Stages[i], true
		}
	}

	return nil, false
}

// NextStage returns the stage with the smallest order strictly greater than
// the given order, if any.
func (d *WorkflowDefinition) NextStage(afterOrder int) (*Stage, bool) {
	var next *Stage

	for i := range d.Stages {
		if d.Stages[i].Order <= afterOrder {
			continue
		}

		if next == nil || d.Stages[i].Order < next.Order {
			next = &d.Stages[i]
		}
	}

	return next, next != nil
}

// OrderedStages returns the stages sorted by ascending order.
func (d *WorkflowDefinition) OrderedStages() []Stage {
	stages := make([]Stage, len(d.Stages))
	copy(stages, d.Stages)

	sort.Slice(stages, func(i, j int) bool {
		return stages[i].Order < stages[j].Order
	})

	return stages
}
