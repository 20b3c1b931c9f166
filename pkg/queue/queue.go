// Package queue implements the asynchronous action-dispatch engine: named
// queues with per-queue worker pools, priority lanes, bounded retries with
// backoff, and retention-aware cleanup of finished jobs.
package queue

import (
	"time"

	"github.com/hireflow/hireflow/pkg/models"
)

// Queue names. Every action job belongs to exactly one of these.
const (
	QueueWorkflow     = "workflow"
	QueueEmail        = "email"
	QueueSchedule     = "schedule"
	QueueNotification = "notification"
)

// QueueNames lists all queues in dispatch order.
func QueueNames() []string {
	return []string{QueueWorkflow, QueueEmail, QueueSchedule, QueueNotification}
}

// Config describes how one queue executes its jobs.
type Config struct {
	Name        string
	Concurrency int
	// LaneConcurrency, when set, gives each priority its own worker pool
	// instead of a shared pool scanning priorities in descending order.
	LaneConcurrency map[models.JobPriority]int
	MaxAttempts     int
	Backoff         models.BackoffPolicy
}

// DefaultConfigs returns the per-queue execution policy.
func DefaultConfigs() map[string]Config {
	return map[string]Config{
		QueueWorkflow: {
			Name:        QueueWorkflow,
			Concurrency: 5,
			MaxAttempts: 3,
			Backoff:     models.BackoffPolicy{Type: models.BackoffExponential, Delay: 2000 * time.Millisecond},
		},
		QueueEmail: {
			Name: QueueEmail,
			LaneConcurrency: map[models.JobPriority]int{
				models.PriorityHigh:   3,
				models.PriorityNormal: 10,
				models.PriorityLow:    2,
			},
			MaxAttempts: 3,
			Backoff:     models.BackoffPolicy{Type: models.BackoffExponential, Delay: 1000 * time.Millisecond},
		},
		QueueSchedule: {
			Name:        QueueSchedule,
			Concurrency: 3,
			MaxAttempts: 3,
			Backoff:     models.BackoffPolicy{Type: models.BackoffExponential, Delay: 2000 * time.Millisecond},
		},
		QueueNotification: {
			Name:        QueueNotification,
			Concurrency: 8,
			MaxAttempts: 2,
			Backoff:     models.BackoffPolicy{Type: models.BackoffFixed, Delay: 5000 * time.Millisecond},
		},
	}
}

// Retention windows for finished jobs. Completed jobs are short-lived
// bookkeeping; failed jobs stay around long enough for operators to inspect.
const (
	CompletedRetention = 24 * time.Hour
	FailedRetention    = 7 * 24 * time.Hour
)

// Stats is a point-in-time census of one queue.
type Stats struct {
	Queue     string `json:"queue"`
	Waiting   int    `json:"waiting"`
	Active    int    `json:"active"`
	Completed int    `json:"completed"`
	Failed    int    `json:"failed"`
}
