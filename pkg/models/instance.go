package models

import "time"

// InstanceStatus represents the lifecycle state of a workflow instance.
type InstanceStatus string

const (
	InstanceStatusActive    InstanceStatus = "active"
	InstanceStatusCompleted InstanceStatus = "completed"
	InstanceStatusPaused    InstanceStatus = "paused"
	InstanceStatusRejected  InstanceStatus = "rejected"
)

// StageOutcome records how a candidate left a stage.
type StageOutcome string

const (
	OutcomePassed  StageOutcome = "passed"
	OutcomeFailed  StageOutcome = "failed"
	OutcomeSkipped StageOutcome = "skipped"
)

// StageHistoryEntry is one append-only record of a stage visit. The entry is
// open (ExitedAt == nil) while the candidate sits in the stage.
type StageHistoryEntry struct {
	StageID   string         `json:"stage_id"`
	StageName string         `json:"stage_name"`
	EnteredAt time.Time      `json:"entered_at"`
	ExitedAt  *time.Time     `json:"exited_at,omitempty"`
	Duration  *time.Duration `json:"duration,omitempty"`
	Outcome   *StageOutcome  `json:"outcome,omitempty"`
	Feedback  string         `json:"feedback,omitempty"`
	Score     *float64       `json:"score,omitempty"`
}

// WorkflowInstance is the live progress record of one candidate against one
// job. It is created by Manager.Start, mutated only by the instance manager,
// and never physically deleted (retained for audit).
type WorkflowInstance struct {
	ID                string              `json:"id"`
	CandidateID       string              `json:"candidate_id" validate:"required"`
	JobID             string              `json:"job_id"       validate:"required"`
	CompanyID         string              `json:"company_id"   validate:"required"`
	WorkflowID        string              `json:"workflow_id"  validate:"required"`
	CurrentStageID    string              `json:"current_stage_id"`
	CurrentStageOrder int                 `json:"current_stage_order"`
	Status            InstanceStatus      `json:"status"`
	StartedAt         time.Time           `json:"started_at"`
	CompletedAt       *time.Time          `json:"completed_at,omitempty"`
	PausedAt          *time.Time          `json:"paused_at,omitempty"`
	RejectedAt        *time.Time          `json:"rejected_at,omitempty"`
	History           []StageHistoryEntry `json:"history"`
	Metadata          map[string]any      `json:"metadata,omitempty"`
}

// IsTerminal reports whether the instance accepts no further transitions.
func (i *WorkflowInstance) IsTerminal() bool {
	return i.Status == InstanceStatusCompleted || i.Status == InstanceStatusRejected
}

// OpenHistoryEntry returns a pointer to the single history entry without an
// exit timestamp, if one exists.
func (i *WorkflowInstance) OpenHistoryEntry() (*StageHistoryEntry, bool) {
	for idx := range i.History {
		if i.History[idx].ExitedAt == nil {
			return &i.History[idx], true
		}
	}

	return nil, false
}

// EnterStage appends a new open history entry and moves the instance pointer
// onto the stage.
func (i *WorkflowInstance) EnterStage(stage *Stage, at time.Time) {
	i.CurrentStageID = stage.ID
	i.CurrentStageOrder = stage.Order
	i.History = append(i.History, StageHistoryEntry{
		StageID:   stage.ID,
		StageName: stage.Name,
		EnteredAt: at,
	})
}

// ExitStage closes the open history entry, stamping the exit time, duration
// and outcome. It is a no-op when no entry is open.
func (i *WorkflowInstance) ExitStage(at time.Time, outcome StageOutcome, feedback string, score *float64) {
	entry, ok := i.OpenHistoryEntry()
	if !ok {
		return
	}

	duration := at.Sub(entry.EnteredAt)

	entry.ExitedAt = &at
	entry.Duration = &duration
	entry.Outcome = &outcome
	entry.Feedback = feedback
	entry.Score = score
}
