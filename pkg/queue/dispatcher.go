package queue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hireflow/hireflow/pkg/models"
	"github.com/hireflow/hireflow/pkg/otelhelper"
)

// Job types of the lane queues. Workflow-queue jobs carry their action type
// instead.
const (
	JobTypeEmail        = "email"
	JobTypeSchedule     = "schedule"
	JobTypeNotification = "notification"
)

// Handler executes one job attempt. A nil return completes the job; an error
// triggers the queue's retry policy.
type Handler func(ctx context.Context, job *models.ActionJob) error

// Enqueuer is the producer-side surface of the dispatcher, consumed by the
// workflow engine and by processors that chain follow-up jobs.
type Enqueuer interface {
	AddWorkflowActionJob(ctx context.Context, refs models.TargetRefs, payload WorkflowActionPayload, triggeredBy string) (string, error)
	AddEmailJob(ctx context.Context, refs models.TargetRefs, payload EmailPayload) (string, error)
	AddScheduleJob(ctx context.Context, refs models.TargetRefs, payload SchedulePayload) (string, error)
	AddNotificationJob(ctx context.Context, refs models.TargetRefs, payload NotificationPayload) (string, error)
}

const pollInterval = 100 * time.Millisecond

// Dispatcher runs the worker pools over a Store. Handlers are registered per
// job type before Start; producers enqueue through the Add*Job methods.
type Dispatcher struct {
	store    Store
	configs  map[string]Config
	handlers map[string]Handler
	logger   *slog.Logger
	validate *validator.Validate
	tracer   trace.Tracer

	paused   atomic.Bool
	started  bool
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewDispatcher(store Store, logger *slog.Logger, tracer trace.Tracer) *Dispatcher {
	return &Dispatcher{
		store:    store,
		configs:  DefaultConfigs(),
		handlers: make(map[string]Handler),
		logger:   logger.With("module", "dispatcher"),
		validate: validator.New(),
		tracer:   tracer,
		stopCh:   make(chan struct{}),
	}
}

// RegisterHandler binds a job type to its executor. Must be called before
// Start.
func (d *Dispatcher) RegisterHandler(jobType string, handler Handler) {
	d.handlers[jobType] = handler
}

// SetQueueConfig overrides the execution policy of one queue. Must be called
// before Start.
func (d *Dispatcher) SetQueueConfig(config Config) {
	d.configs[config.Name] = config
}

// Start launches the worker pools: one shared pool per queue, except queues
// with lane concurrency, which get a dedicated pool per priority.
func (d *Dispatcher) Start(ctx context.Context) {
	if d.started {
		return
	}

	d.started = true

	for _, config := range d.configs {
		if len(config.LaneConcurrency) > 0 {
			for priority, concurrency := range config.LaneConcurrency {
				d.spawnWorkers(ctx, config.Name, concurrency, []models.JobPriority{priority})
			}

			continue
		}

		d.spawnWorkers(ctx, config.Name, config.Concurrency, models.PrioritiesDescending())
	}

	d.logger.InfoContext(ctx, "Dispatcher started", "queues", len(d.configs))
}

func (d *Dispatcher) spawnWorkers(ctx context.Context, queueName string, concurrency int, priorities []models.JobPriority) {
	for range concurrency {
		d.wg.Add(1)

		go d.work(ctx, queueName, priorities)
	}
}

func (d *Dispatcher) work(ctx context.Context, queueName string, priorities []models.JobPriority) {
	defer d.wg.Done()

	for {
		select {
		case <-d.stopCh:
			return
		case <-ctx.Done():
			return
		default:
			if d.paused.Load() {
				time.Sleep(pollInterval)

				continue
			}

			job, err := d.store.Dequeue(ctx, queueName, priorities)
			if err != nil {
				d.logger.ErrorContext(ctx, "Failed to dequeue job", "queue", queueName, "error", err)
				time.Sleep(1 * time.Second)

				continue
			}

			if job == nil {
				time.Sleep(pollInterval)

				continue
			}

			d.runJob(ctx, job)
		}
	}
}

// runJob executes one attempt. Attempts is incremented before the handler
// runs, so a job that succeeds on its final retry reports Attempts ==
// MaxAttempts.
func (d *Dispatcher) runJob(ctx context.Context, job *models.ActionJob) {
	job.Attempts++

	jobCtx, span := otelhelper.StartSpan(ctx, d.tracer, "dispatcher.run_job",
		attribute.String(otelhelper.ActionJobIDKey, job.ID),
		attribute.String(otelhelper.QueueKey, job.Queue),
		attribute.String(otelhelper.ActionTypeKey, job.Type),
		attribute.String(otelhelper.CandidateIDKey, job.Refs.CandidateID),
		attribute.String(otelhelper.JobIDKey, job.Refs.JobID),
		attribute.Int(otelhelper.AttemptKey, job.Attempts),
	)
	defer span.End()

	handler, exists := d.handlers[job.Type]
	if !exists {
		err := fmt.Errorf("no handler registered for job type %s", job.Type)
		otelhelper.SetError(span, err)
		d.logger.ErrorContext(jobCtx, "No handler registered for job type", "type", job.Type, "job_id", job.ID)
		job.LastError = err.Error()

		if failErr := d.store.Fail(jobCtx, job); failErr != nil {
			d.logger.ErrorContext(jobCtx, "Failed to mark job failed", "job_id", job.ID, "error", failErr)
		}

		return
	}

	err := handler(jobCtx, job)
	if err == nil {
		if completeErr := d.store.Complete(jobCtx, job); completeErr != nil {
			d.logger.ErrorContext(jobCtx, "Failed to mark job completed", "job_id", job.ID, "error", completeErr)
		}

		return
	}

	otelhelper.SetError(span, err)
	job.LastError = err.Error()

	if IsNonRetryable(err) {
		d.logger.ErrorContext(jobCtx, "Job failed with non-retryable error",
			"job_id", job.ID, "queue", job.Queue, "type", job.Type,
			"attempts", job.Attempts, "error", err)

		if failErr := d.store.Fail(jobCtx, job); failErr != nil {
			d.logger.ErrorContext(jobCtx, "Failed to mark job failed", "job_id", job.ID, "error", failErr)
		}

		return
	}

	if job.Attempts >= job.MaxAttempts {
		d.logger.ErrorContext(jobCtx, "Job exhausted attempts",
			"job_id", job.ID, "queue", job.Queue, "type", job.Type,
			"attempts", job.Attempts, "error", err)

		if failErr := d.store.Fail(jobCtx, job); failErr != nil {
			d.logger.ErrorContext(jobCtx, "Failed to mark job failed", "job_id", job.ID, "error", failErr)
		}

		return
	}

	delay := BackoffDelay(job.Backoff, job.Attempts)
	d.logger.WarnContext(jobCtx, "Job failed, scheduling retry",
		"job_id", job.ID, "queue", job.Queue, "type", job.Type,
		"attempt", job.Attempts, "retry_in", delay, "error", err)

	if retryErr := d.store.Retry(jobCtx, job, time.Now().Add(delay)); retryErr != nil {
		d.logger.ErrorContext(jobCtx, "Failed to reschedule job", "job_id", job.ID, "error", retryErr)
	}
}

func (d *Dispatcher) newJob(queueName, jobType string, refs models.TargetRefs, priority models.JobPriority, payload map[string]any, triggeredBy string) *models.ActionJob {
	config := d.configs[queueName]
	now := time.Now()

	return &models.ActionJob{
		ID:          uuid.NewString(),
		Queue:       queueName,
		Type:        jobType,
		Refs:        refs,
		Payload:     payload,
		Priority:    priority,
		MaxAttempts: config.MaxAttempts,
		Backoff:     config.Backoff,
		Status:      models.JobStatusWaiting,
		TriggeredBy: triggeredBy,
		EnqueuedAt:  now,
		AvailableAt: now,
	}
}

func (d *Dispatcher) AddWorkflowActionJob(ctx context.Context, refs models.TargetRefs, payload WorkflowActionPayload, triggeredBy string) (string, error) {
	if err := d.validate.Struct(payload); err != nil {
		return "", fmt.Errorf("invalid workflow action payload: %w", err)
	}

	if !payload.ActionType.Valid() {
		return "", fmt.Errorf("invalid workflow action payload: unknown action type %s", payload.ActionType)
	}

	encoded, err := models.EncodePayload(payload)
	if err != nil {
		return "", err
	}

	job := d.newJob(QueueWorkflow, string(payload.ActionType), refs, models.PriorityNormal, encoded, triggeredBy)

	return job.ID, d.enqueue(ctx, job)
}

func (d *Dispatcher) AddEmailJob(ctx context.Context, refs models.TargetRefs, payload EmailPayload) (string, error) {
	if err := d.validate.Struct(payload); err != nil {
		return "", fmt.Errorf("invalid email payload: %w", err)
	}

	if payload.Priority == "" {
		payload.Priority = models.PriorityNormal
	}

	encoded, err := models.EncodePayload(payload)
	if err != nil {
		return "", err
	}

	job := d.newJob(QueueEmail, JobTypeEmail, refs, payload.Priority, encoded, "")

	return job.ID, d.enqueue(ctx, job)
}

func (d *Dispatcher) AddScheduleJob(ctx context.Context, refs models.TargetRefs, payload SchedulePayload) (string, error) {
	if err := d.validate.Struct(payload); err != nil {
		return "", fmt.Errorf("invalid schedule payload: %w", err)
	}

	encoded, err := models.EncodePayload(payload)
	if err != nil {
		return "", err
	}

	job := d.newJob(QueueSchedule, JobTypeSchedule, refs, models.PriorityNormal, encoded, "")

	return job.ID, d.enqueue(ctx, job)
}

func (d *Dispatcher) AddNotificationJob(ctx context.Context, refs models.TargetRefs, payload NotificationPayload) (string, error) {
	if err := d.validate.Struct(payload); err != nil {
		return "", fmt.Errorf("invalid notification payload: %w", err)
	}

	if payload.Channel == "" {
		payload.Channel = models.ChannelEmail
	}

	encoded, err := models.EncodePayload(payload)
	if err != nil {
		return "", err
	}

	job := d.newJob(QueueNotification, JobTypeNotification, refs, models.PriorityNormal, encoded, "")

	return job.ID, d.enqueue(ctx, job)
}

func (d *Dispatcher) enqueue(ctx context.Context, job *models.ActionJob) error {
	if err := d.store.Enqueue(ctx, job); err != nil {
		return fmt.Errorf("failed to enqueue job %s: %w", job.ID, err)
	}

	d.logger.DebugContext(ctx, "Enqueued job",
		"job_id", job.ID, "queue", job.Queue, "type", job.Type, "priority", job.Priority)

	return nil
}

// GetQueueStats reports the census of every queue.
func (d *Dispatcher) GetQueueStats(ctx context.Context) (map[string]Stats, error) {
	stats := make(map[string]Stats, len(d.configs))

	for _, queueName := range QueueNames() {
		queueStats, err := d.store.Stats(ctx, queueName)
		if err != nil {
			return nil, fmt.Errorf("failed to read stats for queue %s: %w", queueName, err)
		}

		stats[queueName] = queueStats
	}

	return stats, nil
}

// PauseQueues stops dequeuing on all queues without dropping queued work.
func (d *Dispatcher) PauseQueues(ctx context.Context) {
	d.paused.Store(true)
	d.logger.InfoContext(ctx, "Queues paused")
}

// ResumeQueues restarts dequeuing.
func (d *Dispatcher) ResumeQueues(ctx context.Context) {
	d.paused.Store(false)
	d.logger.InfoContext(ctx, "Queues resumed")
}

// Paused reports whether dequeuing is currently stopped.
func (d *Dispatcher) Paused() bool {
	return d.paused.Load()
}

// CleanupQueues purges completed jobs past their 24h retention and failed
// jobs past their 7d retention.
func (d *Dispatcher) CleanupQueues(ctx context.Context) (int, error) {
	now := time.Now()

	removed, err := d.store.Cleanup(ctx, now.Add(-CompletedRetention), now.Add(-FailedRetention))
	if err != nil {
		return 0, fmt.Errorf("failed to clean up queues: %w", err)
	}

	if removed > 0 {
		d.logger.InfoContext(ctx, "Cleaned up finished jobs", "removed", removed)
	}

	return removed, nil
}

// Shutdown drains the workers and closes the backing store. Safe to call more
// than once.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.logger.InfoContext(ctx, "Shutting down dispatcher")

	d.stopOnce.Do(func() { close(d.stopCh) })
	d.wg.Wait()

	return d.store.Close(ctx)
}
