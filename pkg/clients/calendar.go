package clients

import (
	"context"
	"time"
)

// CalendarEvent is the provider-neutral event shape sent to the calendar
// collaborator.
type CalendarEvent struct {
	Title       string
	Description string
	Start       time.Time
	End         time.Time
	Attendees   []string
	Location    string
}

// ConflictCheck is the result of a calendar availability probe.
type ConflictCheck struct {
	HasConflicts bool
	Conflicts    []CalendarEvent
}

// CalendarService books and maintains calendar events with the external
// provider.
type CalendarService interface {
	CreateEvent(ctx context.Context, event CalendarEvent) (string, error)
	UpdateEvent(ctx context.Context, eventID string, patch CalendarEvent) (bool, error)
	DeleteEvent(ctx context.Context, eventID string) (bool, error)
	CheckConflicts(ctx context.Context, start, end time.Time, attendees []string) (ConflictCheck, error)
}
