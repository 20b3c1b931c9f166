package clients

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// LoggingEmailService is a development stand-in that records sends to the
// process log instead of delivering mail.
type LoggingEmailService struct {
	logger *slog.Logger
}

func NewLoggingEmailService(logger *slog.Logger) *LoggingEmailService {
	return &LoggingEmailService{logger: logger.With("module", "email_client")}
}

func (s *LoggingEmailService) SendPersonalizedEmail(
	ctx context.Context,
	templateName string,
	recipientEmail string,
	recipientName string,
	variables map[string]any,
	opts SendOptions,
) (bool, error) {
	s.logger.InfoContext(ctx, "Sending email",
		"template", templateName,
		"recipient", recipientEmail,
		"recipient_name", recipientName,
		"variables", variables,
		"ai_personalization", opts.UseAIPersonalization,
		"idempotency_key", opts.IdempotencyKey,
	)

	return true, nil
}

// LoggingCalendarService is a development stand-in for the calendar provider.
type LoggingCalendarService struct {
	logger *slog.Logger
}

func NewLoggingCalendarService(logger *slog.Logger) *LoggingCalendarService {
	return &LoggingCalendarService{logger: logger.With("module", "calendar_client")}
}

func (s *LoggingCalendarService) CreateEvent(ctx context.Context, event CalendarEvent) (string, error) {
	eventID := "evt-" + uuid.New().String()[:8]

	s.logger.InfoContext(ctx, "Creating calendar event",
		"event_id", eventID,
		"title", event.Title,
		"start", event.Start,
		"attendees", event.Attendees,
	)

	return eventID, nil
}

func (s *LoggingCalendarService) UpdateEvent(ctx context.Context, eventID string, _ CalendarEvent) (bool, error) {
	s.logger.InfoContext(ctx, "Updating calendar event", "event_id", eventID)

	return true, nil
}

func (s *LoggingCalendarService) DeleteEvent(ctx context.Context, eventID string) (bool, error) {
	s.logger.InfoContext(ctx, "Deleting calendar event", "event_id", eventID)

	return true, nil
}

func (s *LoggingCalendarService) CheckConflicts(ctx context.Context, start, end time.Time, attendees []string) (ConflictCheck, error) {
	s.logger.InfoContext(ctx, "Checking calendar conflicts",
		"start", start,
		"end", end,
		"attendees", attendees,
	)

	return ConflictCheck{}, nil
}

// LoggingAIService is a development stand-in for the AI matching service. It
// reports a neutral score so ai_screening_passed predicates stay false unless
// a real service is wired.
type LoggingAIService struct {
	logger *slog.Logger
}

func NewLoggingAIService(logger *slog.Logger) *LoggingAIService {
	return &LoggingAIService{logger: logger.With("module", "ai_client")}
}

func (s *LoggingAIService) MatchCandidateToJob(ctx context.Context, candidateID, jobID string) (MatchResult, error) {
	s.logger.InfoContext(ctx, "Matching candidate to job",
		"candidate_id", candidateID,
		"job_id", jobID,
	)

	return MatchResult{OverallScore: 0}, nil
}

func (s *LoggingAIService) ParseResume(ctx context.Context, _ []byte) (map[string]any, error) {
	s.logger.InfoContext(ctx, "Parsing resume")

	return map[string]any{}, nil
}
