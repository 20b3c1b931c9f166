package queue_test

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/hireflow/hireflow/pkg/models"
	"github.com/hireflow/hireflow/pkg/queue"
	"github.com/hireflow/hireflow/pkg/queue/memory"
)

func newDispatcher(t *testing.T) (*queue.Dispatcher, *memory.Store) {
	t.Helper()

	store := memory.NewStore()
	tracer := noop.NewTracerProvider().Tracer("test")

	return queue.NewDispatcher(store, slog.Default(), tracer), store
}

func testRefs() models.TargetRefs {
	return models.TargetRefs{
		CandidateID: "cand-1",
		JobID:       "job-1",
		CompanyID:   "comp-1",
		WorkflowID:  "wf-1",
		StageID:     "stage-1",
	}
}

func waitFor(t *testing.T, condition func() bool) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}

		time.Sleep(10 * time.Millisecond)
	}

	t.Fatal("condition not met before deadline")
}

func TestAddEmailJobValidation(t *testing.T) {
	ctx := context.Background()
	dispatcher, _ := newDispatcher(t)

	_, err := dispatcher.AddEmailJob(ctx, testRefs(), queue.EmailPayload{
		TemplateName:   "interview_invitation",
		RecipientEmail: "not-an-email",
	})
	require.Error(t, err)

	_, err = dispatcher.AddEmailJob(ctx, testRefs(), queue.EmailPayload{
		RecipientEmail: "jo@example.com",
	})
	require.Error(t, err, "template name is required")

	id, err := dispatcher.AddEmailJob(ctx, testRefs(), queue.EmailPayload{
		TemplateName:   "interview_invitation",
		RecipientEmail: "jo@example.com",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestAddWorkflowActionJobRejectsUnknownAction(t *testing.T) {
	ctx := context.Background()
	dispatcher, _ := newDispatcher(t)

	_, err := dispatcher.AddWorkflowActionJob(ctx, testRefs(), queue.WorkflowActionPayload{
		ActionType: models.ActionType("launch_rocket"),
	}, "recruiter-1")
	require.Error(t, err)
}

func TestAddJobAppliesQueuePolicy(t *testing.T) {
	ctx := context.Background()
	dispatcher, store := newDispatcher(t)

	_, err := dispatcher.AddNotificationJob(ctx, testRefs(), queue.NotificationPayload{
		NotificationType: models.NotifyStageChange,
	})
	require.NoError(t, err)

	job, err := store.Dequeue(ctx, queue.QueueNotification, models.PrioritiesDescending())
	require.NoError(t, err)
	require.NotNil(t, job)

	assert.Equal(t, queue.JobTypeNotification, job.Type)
	assert.Equal(t, 2, job.MaxAttempts)
	assert.Equal(t, models.BackoffFixed, job.Backoff.Type)
	assert.Equal(t, models.PriorityNormal, job.Priority)

	payload := queue.NotificationPayload{}
	require.NoError(t, models.DecodePayload(job.Payload, &payload))
	assert.Equal(t, models.ChannelEmail, payload.Channel, "channel defaults to email")
}

func TestDispatcherExecutesJob(t *testing.T) {
	ctx := context.Background()
	dispatcher, _ := newDispatcher(t)

	var processed atomic.Int32

	dispatcher.RegisterHandler(queue.JobTypeEmail, func(_ context.Context, _ *models.ActionJob) error {
		processed.Add(1)

		return nil
	})

	dispatcher.Start(ctx)
	defer func() { require.NoError(t, dispatcher.Shutdown(ctx)) }()

	_, err := dispatcher.AddEmailJob(ctx, testRefs(), queue.EmailPayload{
		TemplateName:   "welcome",
		RecipientEmail: "jo@example.com",
	})
	require.NoError(t, err)

	waitFor(t, func() bool { return processed.Load() == 1 })

	stats, err := dispatcher.GetQueueStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats[queue.QueueEmail].Completed)
}

func TestDispatcherReschedulesFailedJob(t *testing.T) {
	ctx := context.Background()
	dispatcher, _ := newDispatcher(t)

	var attempts atomic.Int32

	dispatcher.RegisterHandler(queue.JobTypeNotification, func(_ context.Context, job *models.ActionJob) error {
		attempts.Add(1)

		if job.Attempts < 2 {
			return errors.New("transient delivery failure")
		}

		return nil
	})

	dispatcher.Start(ctx)
	defer func() { require.NoError(t, dispatcher.Shutdown(ctx)) }()

	_, err := dispatcher.AddNotificationJob(ctx, testRefs(), queue.NotificationPayload{
		NotificationType: models.NotifyCandidateAdvanced,
	})
	require.NoError(t, err)

	// Notification retry delay is a fixed 5s; the test cannot wait for the
	// scheduled retry in real time, so only the first attempt and the
	// reschedule are observable here.
	waitFor(t, func() bool { return attempts.Load() == 1 })

	stats, err := dispatcher.GetQueueStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats[queue.QueueNotification].Failed)
	assert.Equal(t, 1, stats[queue.QueueNotification].Waiting+stats[queue.QueueNotification].Active)
}

func TestDispatcherRetriesUntilSuccess(t *testing.T) {
	ctx := context.Background()
	dispatcher, _ := newDispatcher(t)

	// Millisecond backoff so the scheduled retries run within the test.
	dispatcher.SetQueueConfig(queue.Config{
		Name:        queue.QueueNotification,
		Concurrency: 2,
		MaxAttempts: 3,
		Backoff:     models.BackoffPolicy{Type: models.BackoffFixed, Delay: 20 * time.Millisecond},
	})

	var finalAttempts atomic.Int32

	dispatcher.RegisterHandler(queue.JobTypeNotification, func(_ context.Context, job *models.ActionJob) error {
		if job.Attempts < 3 {
			return errors.New("transient delivery failure")
		}

		finalAttempts.Store(int32(job.Attempts))

		return nil
	})

	dispatcher.Start(ctx)
	defer func() { require.NoError(t, dispatcher.Shutdown(ctx)) }()

	_, err := dispatcher.AddNotificationJob(ctx, testRefs(), queue.NotificationPayload{
		NotificationType: models.NotifyCandidateAdvanced,
	})
	require.NoError(t, err)

	waitFor(t, func() bool { return finalAttempts.Load() == 3 })

	stats, err := dispatcher.GetQueueStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats[queue.QueueNotification].Completed)
	assert.Equal(t, 0, stats[queue.QueueNotification].Failed)
}

func TestDispatcherFailsNonRetryableErrorImmediately(t *testing.T) {
	ctx := context.Background()
	dispatcher, _ := newDispatcher(t)

	var attempts atomic.Int32

	dispatcher.RegisterHandler(queue.JobTypeEmail, func(_ context.Context, _ *models.ActionJob) error {
		attempts.Add(1)

		return queue.NonRetryable(errors.New("template does not exist"))
	})

	dispatcher.Start(ctx)
	defer func() { require.NoError(t, dispatcher.Shutdown(ctx)) }()

	_, err := dispatcher.AddEmailJob(ctx, testRefs(), queue.EmailPayload{
		TemplateName:   "missing_template",
		RecipientEmail: "jo@example.com",
	})
	require.NoError(t, err)

	waitFor(t, func() bool {
		stats, statsErr := dispatcher.GetQueueStats(ctx)

		return statsErr == nil && stats[queue.QueueEmail].Failed == 1
	})

	assert.Equal(t, int32(1), attempts.Load(), "non-retryable failures must not be rescheduled")
}

func TestShutdownIsIdempotent(t *testing.T) {
	ctx := context.Background()
	dispatcher, _ := newDispatcher(t)

	dispatcher.Start(ctx)

	require.NoError(t, dispatcher.Shutdown(ctx))
	require.NoError(t, dispatcher.Shutdown(ctx))
}

func TestDispatcherFailsJobWithoutHandler(t *testing.T) {
	ctx := context.Background()
	dispatcher, _ := newDispatcher(t)

	dispatcher.Start(ctx)
	defer func() { require.NoError(t, dispatcher.Shutdown(ctx)) }()

	_, err := dispatcher.AddScheduleJob(ctx, testRefs(), queue.SchedulePayload{
		ScheduleType: models.ScheduleInterview,
	})
	require.NoError(t, err)

	waitFor(t, func() bool {
		stats, statsErr := dispatcher.GetQueueStats(ctx)

		return statsErr == nil && stats[queue.QueueSchedule].Failed == 1
	})
}

func TestPauseStopsDequeuing(t *testing.T) {
	ctx := context.Background()
	dispatcher, _ := newDispatcher(t)

	var processed atomic.Int32

	dispatcher.RegisterHandler(queue.JobTypeEmail, func(_ context.Context, _ *models.ActionJob) error {
		processed.Add(1)

		return nil
	})

	dispatcher.PauseQueues(ctx)
	dispatcher.Start(ctx)
	defer func() { require.NoError(t, dispatcher.Shutdown(ctx)) }()

	_, err := dispatcher.AddEmailJob(ctx, testRefs(), queue.EmailPayload{
		TemplateName:   "welcome",
		RecipientEmail: "jo@example.com",
	})
	require.NoError(t, err)

	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(0), processed.Load(), "paused queues must not execute work")
	assert.True(t, dispatcher.Paused())

	dispatcher.ResumeQueues(ctx)
	waitFor(t, func() bool { return processed.Load() == 1 })
}

func TestEmailLanesDoNotStarveHighPriority(t *testing.T) {
	ctx := context.Background()
	dispatcher, _ := newDispatcher(t)

	var highProcessed atomic.Int32

	block := make(chan struct{})

	// Unblock the parked lane workers before Shutdown waits on them.
	defer func() { require.NoError(t, dispatcher.Shutdown(ctx)) }()
	defer close(block)

	dispatcher.RegisterHandler(queue.JobTypeEmail, func(_ context.Context, job *models.ActionJob) error {
		if job.Priority == models.PriorityHigh {
			highProcessed.Add(1)

			return nil
		}

		// Every low/normal lane worker parks here.
		<-block

		return nil
	})

	dispatcher.Start(ctx)

	for range 20 {
		_, err := dispatcher.AddEmailJob(ctx, testRefs(), queue.EmailPayload{
			TemplateName:   "bulk_update",
			RecipientEmail: "jo@example.com",
			Priority:       models.PriorityLow,
		})
		require.NoError(t, err)
	}

	_, err := dispatcher.AddEmailJob(ctx, testRefs(), queue.EmailPayload{
		TemplateName:   "interview_invitation",
		RecipientEmail: "jo@example.com",
		Priority:       models.PriorityHigh,
	})
	require.NoError(t, err)

	waitFor(t, func() bool { return highProcessed.Load() == 1 })
}
