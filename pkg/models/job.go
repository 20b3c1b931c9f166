package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// JobPriority is the scheduling priority of a queued action job. Email jobs
// map priorities to distinct execution lanes so high-priority mail is not
// starved behind bulk low-priority mail.
type JobPriority string

const (
	PriorityLow    JobPriority = "low"
	PriorityNormal JobPriority = "normal"
	PriorityHigh   JobPriority = "high"
)

// PrioritiesDescending lists priorities from most to least urgent, the order
// in which a worker scans lanes of a shared queue.
func PrioritiesDescending() []JobPriority {
	return []JobPriority{PriorityHigh, PriorityNormal, PriorityLow}
}

// BackoffType selects the retry delay growth curve.
type BackoffType string

const (
	BackoffFixed       BackoffType = "fixed"
	BackoffExponential BackoffType = "exponential"
)

// BackoffPolicy is the delay policy between retry attempts of a failed job.
type BackoffPolicy struct {
	Type  BackoffType   `json:"type"`
	Delay time.Duration `json:"delay_ms"`
}

// JobStatus is the store-level state of an action job.
type JobStatus string

const (
	JobStatusWaiting   JobStatus = "waiting"
	JobStatusActive    JobStatus = "active"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// TargetRefs identifies the domain records a job acts on.
type TargetRefs struct {
	CandidateID string `json:"candidate_id"`
	JobID       string `json:"job_id"`
	CompanyID   string `json:"company_id"`
	WorkflowID  string `json:"workflow_id"`
	StageID     string `json:"stage_id,omitempty"`
}

// ActionJob is a durable, queued unit of side-effecting work derived from a
// lifecycle event. It is consumed exactly once per attempt by a processor and
// retried with backoff until MaxAttempts is exhausted, after which it is
// retained as failed for operator inspection.
type ActionJob struct {
	ID          string         `json:"id"`
	Queue       string         `json:"queue"`
	Type        string         `json:"type"`
	Refs        TargetRefs     `json:"refs"`
	Payload     map[string]any `json:"payload,omitempty"`
	Priority    JobPriority    `json:"priority"`
	Attempts    int            `json:"attempts"`
	MaxAttempts int            `json:"max_attempts"`
	Backoff     BackoffPolicy  `json:"backoff"`
	Status      JobStatus      `json:"status"`
	TriggeredBy string         `json:"triggered_by,omitempty"`
	EnqueuedAt  time.Time      `json:"enqueued_at"`
	AvailableAt time.Time      `json:"available_at"`
	StartedAt   *time.Time     `json:"started_at,omitempty"`
	FinishedAt  *time.Time     `json:"finished_at,omitempty"`
	LastError   string         `json:"last_error,omitempty"`
}

// IdempotencyKey derives a stable key from the job target and kind so a
// processor retry does not repeat an already-delivered side effect.
func (j *ActionJob) IdempotencyKey() string {
	return fmt.Sprintf("%s:%s:%s:%s", j.Refs.CandidateID, j.Refs.JobID, j.Type, j.Refs.StageID)
}

// DecodePayload unmarshals the loosely-typed job payload into a typed
// structure via a JSON round trip.
func DecodePayload(payload map[string]any, dst any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("failed to decode payload: %w", err)
	}

	return nil
}

// EncodePayload converts a typed payload structure into the loosely-typed map
// stored on the job.
func EncodePayload(src any) (map[string]any, error) {
	raw, err := json.Marshal(src)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}

	payload := make(map[string]any)
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}

	return payload, nil
}
