// Package schedule_interview implements the schedule_interview action. The
// interview record is the source of truth: a calendar booking failure is
// logged as a warning and never fails the job.
package schedule_interview

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hireflow/hireflow/pkg/clients"
	"github.com/hireflow/hireflow/pkg/models"
	"github.com/hireflow/hireflow/pkg/persistence"
	"github.com/hireflow/hireflow/pkg/queue"
)

const defaultDuration = 60 * time.Minute

type Processor struct {
	title        string
	interviewers []string
	duration     time.Duration
	startTime    string
	location     string

	persistence persistence.Persistence
	calendar    clients.CalendarService
	enqueuer    queue.Enqueuer
	logger      *slog.Logger
}

func NewProcessor(config map[string]any, persistence persistence.Persistence, calendar clients.CalendarService, enqueuer queue.Enqueuer, logger *slog.Logger) (*Processor, error) {
	title, _ := config["title"].(string)
	startTime, _ := config["start_time"].(string)
	location, _ := config["location"].(string)

	duration := defaultDuration
	if minutes, ok := config["duration_minutes"].(float64); ok {
		duration = time.Duration(minutes) * time.Minute
	}

	interviewers := make([]string, 0)
	if raw, ok := config["interviewers"].([]any); ok {
		for _, entry := range raw {
			if email, ok := entry.(string); ok {
				interviewers = append(interviewers, email)
			}
		}
	}

	return &Processor{
		title:        title,
		interviewers: interviewers,
		duration:     duration,
		startTime:    startTime,
		location:     location,
		persistence:  persistence,
		calendar:     calendar,
		enqueuer:     enqueuer,
		logger:       logger.With("module", "schedule_interview_processor"),
	}, nil
}

func (p *Processor) Process(ctx context.Context, job *models.ActionJob) (map[string]any, error) {
	candidate, err := p.persistence.CandidateByID(ctx, job.Refs.CandidateID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve candidate: %w", err)
	}

	scheduledAt, err := p.resolveStart()
	if err != nil {
		return nil, err
	}

	title := p.title
	if title == "" {
		title = "Interview: " + candidate.FullName()
	}

	interview := &models.Interview{
		ID:           uuid.NewString(),
		CandidateID:  job.Refs.CandidateID,
		JobID:        job.Refs.JobID,
		CompanyID:    job.Refs.CompanyID,
		StageID:      job.Refs.StageID,
		Title:        title,
		ScheduledAt:  scheduledAt,
		Duration:     p.duration,
		Participants: append([]string{candidate.Email}, p.interviewers...),
		Location:     p.location,
		Status:       models.InterviewScheduled,
	}

	if err := p.persistence.SaveInterview(ctx, interview); err != nil {
		return nil, fmt.Errorf("failed to save interview: %w", err)
	}

	eventID := p.bookCalendarEvent(ctx, interview)
	if eventID != "" {
		interview.CalendarEventID = eventID
		if err := p.persistence.UpdateInterview(ctx, interview); err != nil {
			p.logger.WarnContext(ctx, "Failed to record calendar event id on interview",
				"interview_id", interview.ID, "error", err)
		}
	}

	if err := p.sendConfirmations(ctx, job, candidate, interview); err != nil {
		return nil, err
	}

	return map[string]any{
		"interview_id":      interview.ID,
		"calendar_event_id": eventID,
		"scheduled_at":      interview.ScheduledAt.Format(time.RFC3339),
	}, nil
}

func (p *Processor) resolveStart() (time.Time, error) {
	if p.startTime == "" {
		// No explicit slot: propose three business days out.
		return time.Now().Add(72 * time.Hour).Truncate(time.Hour), nil
	}

	scheduledAt, err := time.Parse(time.RFC3339, p.startTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid start_time: %w", err)
	}

	return scheduledAt, nil
}

// bookCalendarEvent returns the created event id, or empty when booking
// failed. The interview record stands either way.
func (p *Processor) bookCalendarEvent(ctx context.Context, interview *models.Interview) string {
	eventID, err := p.calendar.CreateEvent(ctx, clients.CalendarEvent{
		Title:     interview.Title,
		Start:     interview.ScheduledAt,
		End:       interview.ScheduledAt.Add(interview.Duration),
		Attendees: interview.Participants,
		Location:  interview.Location,
	})
	if err != nil {
		p.logger.WarnContext(ctx, "Calendar booking failed, interview record stands",
			"interview_id", interview.ID, "error", err)

		return ""
	}

	return eventID
}

func (p *Processor) sendConfirmations(ctx context.Context, job *models.ActionJob, candidate *models.Candidate, interview *models.Interview) error {
	variables := map[string]any{
		"candidate_name": candidate.FullName(),
		"interview_time": interview.ScheduledAt.Format(time.RFC3339),
		"duration":       interview.Duration.String(),
		"location":       interview.Location,
	}

	_, err := p.enqueuer.AddEmailJob(ctx, job.Refs, queue.EmailPayload{
		TemplateName:   "interview_confirmation_candidate",
		RecipientEmail: candidate.Email,
		RecipientName:  candidate.FullName(),
		Variables:      variables,
		Priority:       models.PriorityHigh,
	})
	if err != nil {
		return fmt.Errorf("failed to enqueue candidate confirmation: %w", err)
	}

	for _, interviewer := range p.interviewers {
		_, err := p.enqueuer.AddEmailJob(ctx, job.Refs, queue.EmailPayload{
			TemplateName:   "interview_confirmation_interviewer",
			RecipientEmail: interviewer,
			Variables:      variables,
			Priority:       models.PriorityHigh,
		})
		if err != nil {
			return fmt.Errorf("failed to enqueue interviewer confirmation: %w", err)
		}
	}

	return nil
}
