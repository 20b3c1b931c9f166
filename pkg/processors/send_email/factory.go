package send_email

import (
	"log/slog"

	"github.com/hireflow/hireflow/pkg/models"
	"github.com/hireflow/hireflow/pkg/persistence"
	"github.com/hireflow/hireflow/pkg/protocol"
	"github.com/hireflow/hireflow/pkg/queue"
)

type Factory struct {
	persistence persistence.Persistence
	enqueuer    queue.Enqueuer
	logger      *slog.Logger
}

func NewFactory(persistence persistence.Persistence, enqueuer queue.Enqueuer, logger *slog.Logger) *Factory {
	return &Factory{persistence: persistence, enqueuer: enqueuer, logger: logger}
}

func (f *Factory) ID() string {
	return string(models.ActionSendEmail)
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"template": map[string]any{
				"type":        "string",
				"description": "Name of the email template to render.",
				"examples":    []string{"application_received", "interview_invitation", "rejection"},
			},
			"priority": map[string]any{
				"type":        "string",
				"enum":        []string{"low", "normal", "high"},
				"description": "Email queue lane (default: normal).",
				"default":     "normal",
			},
			"use_ai_personalization": map[string]any{
				"type":        "boolean",
				"description": "Ask the delivery service to personalize the body with the candidate profile.",
				"default":     false,
			},
			"variables": map[string]any{
				"type":        "object",
				"description": "Extra template variables merged over the resolved candidate/job/company set.",
			},
		},
		"required": []string{"template"},
	}
}

func (f *Factory) Create(config map[string]any) (protocol.Processor, error) {
	return NewProcessor(config, f.persistence, f.enqueuer, f.logger)
}

var _ protocol.ProcessorFactory = (*Factory)(nil)
