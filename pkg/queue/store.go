package queue

import (
	"context"
	"errors"
	"time"

	"github.com/hireflow/hireflow/pkg/models"
)

// ErrJobNotFound is returned when a store operation references a job the
// store no longer holds.
var ErrJobNotFound = errors.New("job not found")

// Store is the durable backing of the dispatch engine. Implementations must
// hand each waiting job to at most one worker per attempt.
type Store interface {
	// Enqueue makes the job visible to workers once job.AvailableAt passes.
	Enqueue(ctx context.Context, job *models.ActionJob) error

	// Dequeue pops the next available job from the named queue, scanning
	// the given priorities in order. It returns nil with no error when
	// nothing is ready.
	Dequeue(ctx context.Context, queue string, priorities []models.JobPriority) (*models.ActionJob, error)

	// Complete marks an active job finished successfully.
	Complete(ctx context.Context, job *models.ActionJob) error

	// Retry reschedules an active job to run again at the given time.
	Retry(ctx context.Context, job *models.ActionJob, at time.Time) error

	// Fail moves an active job to the failed set, retained for inspection.
	Fail(ctx context.Context, job *models.ActionJob) error

	// Stats reports the census of one queue.
	Stats(ctx context.Context, queue string) (Stats, error)

	// Cleanup removes completed jobs finished before completedBefore and
	// failed jobs finished before failedBefore, returning how many were
	// removed.
	Cleanup(ctx context.Context, completedBefore, failedBefore time.Time) (int, error)

	Close(ctx context.Context) error
}
