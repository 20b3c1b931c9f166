package calendar_event

import (
	"log/slog"

	"github.com/hireflow/hireflow/pkg/models"
	"github.com/hireflow/hireflow/pkg/protocol"
	"github.com/hireflow/hireflow/pkg/queue"
)

type Factory struct {
	enqueuer queue.Enqueuer
	logger   *slog.Logger
}

func NewFactory(enqueuer queue.Enqueuer, logger *slog.Logger) *Factory {
	return &Factory{enqueuer: enqueuer, logger: logger}
}

func (f *Factory) ID() string {
	return string(models.ActionAddCalendarEvent)
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{
				"type":        "string",
				"description": "Event title.",
			},
			"start_time": map[string]any{
				"type":        "string",
				"description": "RFC 3339 event start.",
				"examples":    []string{"2025-03-10T14:00:00Z"},
			},
			"end_time": map[string]any{
				"type":        "string",
				"description": "RFC 3339 event end; must be after start_time.",
				"examples":    []string{"2025-03-10T15:00:00Z"},
			},
			"attendees": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string", "format": "email"},
			},
		},
		"required": []string{"start_time", "end_time"},
	}
}

func (f *Factory) Create(config map[string]any) (protocol.Processor, error) {
	return NewProcessor(config, f.enqueuer, f.logger)
}

var _ protocol.ProcessorFactory = (*Factory)(nil)
