package offer_letter

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
	return string(models.ActionGenerateOfferLetter)
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"start_date": map[string]any{
				"type":        "string",
				"description": "Proposed start date (YYYY-MM-DD). Empty proposes two weeks out.",
				"examples":    []string{"2025-04-01"},
			},
			"salary": map[string]any{
				"type":        "number",
				"minimum":     0,
				"description": "Offered salary. Empty falls back to the posting's salary_max.",
			},
		},
		"required": []string{},
	}
}

func (f *Factory) Create(config map[string]any) (protocol.Processor, error) {
	return NewProcessor(config, f.persistence, f.enqueuer, f.logger)
}

var _ protocol.ProcessorFactory = (*Factory)(nil)
