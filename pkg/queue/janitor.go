package queue

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Janitor runs CleanupQueues on a schedule so finished jobs do not accumulate
// past their retention windows.
type Janitor struct {
	dispatcher *Dispatcher
	logger     *slog.Logger
	cron       *cron.Cron
}

func NewJanitor(dispatcher *Dispatcher, logger *slog.Logger) *Janitor {
	return &Janitor{
		dispatcher: dispatcher,
		logger:     logger.With("module", "janitor"),
		cron:       cron.New(),
	}
}

// Start schedules an hourly cleanup.
func (j *Janitor) Start(ctx context.Context) error {
	_, err := j.cron.AddFunc("@hourly", func() {
		if _, err := j.dispatcher.CleanupQueues(ctx); err != nil {
			j.logger.ErrorContext(ctx, "Scheduled queue cleanup failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(ctx, "Janitor started", "schedule", "@hourly")

	return nil
}

// Stop halts the schedule and waits for a running cleanup to finish.
func (j *Janitor) Stop() {
	<-j.cron.Stop().Done()
}
