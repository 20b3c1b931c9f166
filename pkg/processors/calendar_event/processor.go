// Package calendar_event implements the add_calendar_event action: it
// computes the event duration from start/end and re-expresses the work as a
// schedule-queue job, reusing interview scheduling as the underlying
// mechanism.
package calendar_event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hireflow/hireflow/pkg/models"
	"github.com/hireflow/hireflow/pkg/queue"
)

type Processor struct {
	title     string
	startTime string
	endTime   string
	attendees []string

	enqueuer queue.Enqueuer
	logger   *slog.Logger
}

func NewProcessor(config map[string]any, enqueuer queue.Enqueuer, logger *slog.Logger) (*Processor, error) {
	title, _ := config["title"].(string)
	startTime, _ := config["start_time"].(string)
	endTime, _ := config["end_time"].(string)

	attendees := make([]string, 0)
	if raw, ok := config["attendees"].([]any); ok {
		for _, entry := range raw {
			if email, ok := entry.(string); ok {
				attendees = append(attendees, email)
			}
		}
	}

	return &Processor{
		title:     title,
		startTime: startTime,
		endTime:   endTime,
		attendees: attendees,
		enqueuer:  enqueuer,
		logger:    logger.With("module", "calendar_event_processor"),
	}, nil
}

func (p *Processor) Process(ctx context.Context, job *models.ActionJob) (map[string]any, error) {
	start, err := time.Parse(time.RFC3339, p.startTime)
	if err != nil {
		return nil, fmt.Errorf("invalid start_time: %w", err)
	}

	end, err := time.Parse(time.RFC3339, p.endTime)
	if err != nil {
		return nil, fmt.Errorf("invalid end_time: %w", err)
	}

	if !end.After(start) {
		return nil, fmt.Errorf("end_time %s is not after start_time %s", p.endTime, p.startTime)
	}

	duration := end.Sub(start)

	scheduleJobID, err := p.enqueuer.AddScheduleJob(ctx, job.Refs, queue.SchedulePayload{
		ScheduleType: models.ScheduleInterview,
		Title:        p.title,
		StartTime:    p.startTime,
		EndTime:      p.endTime,
		Attendees:    p.attendees,
		Variables: map[string]any{
			"duration_minutes": duration.Minutes(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue schedule job: %w", err)
	}

	p.logger.InfoContext(ctx, "Calendar event re-expressed as schedule job",
		"schedule_job_id", scheduleJobID, "duration", duration)

	return map[string]any{
		"schedule_job_id":  scheduleJobID,
		"duration_minutes": duration.Minutes(),
	}, nil
}
