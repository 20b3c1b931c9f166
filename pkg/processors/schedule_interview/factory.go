package schedule_interview

import (
	"log/slog"

	"github.com/hireflow/hireflow/pkg/clients"
	"github.com/hireflow/hireflow/pkg/models"
	"github.com/hireflow/hireflow/pkg/persistence"
	"github.com/hireflow/hireflow/pkg/protocol"
	"github.com/hireflow/hireflow/pkg/queue"
)

type Factory struct {
	persistence persistence.Persistence
	calendar    clients.CalendarService
	enqueuer    queue.Enqueuer
	logger      *slog.Logger
}

func NewFactory(persistence persistence.Persistence, calendar clients.CalendarService, enqueuer queue.Enqueuer, logger *slog.Logger) *Factory {
	return &Factory{persistence: persistence, calendar: calendar, enqueuer: enqueuer, logger: logger}
}

func (f *Factory) ID() string {
	return string(models.ActionScheduleInterview)
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{
				"type":        "string",
				"description": "Interview title shown on calendar invites.",
			},
			"interviewers": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string", "format": "email"},
				"description": "Interviewer email addresses to invite.",
			},
			"duration_minutes": map[string]any{
				"type":        "number",
				"minimum":     15,
				"description": "Interview length in minutes (default: 60).",
				"default":     60,
			},
			"start_time": map[string]any{
				"type":        "string",
				"description": "RFC 3339 start time. Empty proposes a slot three days out.",
				"examples":    []string{"2025-03-10T14:00:00Z"},
			},
			"location": map[string]any{
				"type":        "string",
				"description": "Room or meeting link.",
			},
		},
		"required": []string{},
	}
}

func (f *Factory) Create(config map[string]any) (protocol.Processor, error) {
	return NewProcessor(config, f.persistence, f.calendar, f.enqueuer, f.logger)
}

var _ protocol.ProcessorFactory = (*Factory)(nil)
