package verify_assessment

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
	return string(models.ActionVerifyAssessment)
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"passing_score": map[string]any{
				"type":        "number",
				"minimum":     0,
				"maximum":     100,
				"description": "Overrides the threshold recorded on the assessment.",
			},
			"notify_on_pass": map[string]any{
				"type":        "boolean",
				"description": "Queue an assessment_passed notification when the score clears the threshold.",
				"default":     false,
			},
		},
		"required": []string{},
	}
}

func (f *Factory) Create(config map[string]any) (protocol.Processor, error) {
	return NewProcessor(config, f.persistence, f.enqueuer, f.logger)
}

var _ protocol.ProcessorFactory = (*Factory)(nil)
