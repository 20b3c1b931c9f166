package assign_assessment

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
	return string(models.ActionAssignAssessment)
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"kind": map[string]any{
				"type":        "string",
				"description": "Assessment kind handed to the assessment platform.",
				"examples":    []string{"coding_challenge", "take_home", "personality"},
			},
			"deadline_days": map[string]any{
				"type":        "number",
				"minimum":     1,
				"description": "Days until the assessment is due (default: 7).",
				"default":     7,
			},
			"passing_score": map[string]any{
				"type":        "number",
				"minimum":     0,
				"maximum":     100,
				"description": "Score threshold used later by verify_assessment (default: 70).",
				"default":     70,
			},
		},
		"required": []string{},
	}
}

func (f *Factory) Create(config map[string]any) (protocol.Processor, error) {
	return NewProcessor(config, f.persistence, f.enqueuer, f.logger)
}

var _ protocol.ProcessorFactory = (*Factory)(nil)
