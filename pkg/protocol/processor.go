// Package protocol defines the contracts between the dispatch engine and the
// action processors that execute jobs.
package protocol

import (
	"context"

	"github.com/hireflow/hireflow/pkg/models"
)

// Processor executes one job attempt and returns its outputs. An error
// triggers the owning queue's retry policy; a negative business outcome (a
// failed assessment, a declined slot) is an output, not an error.
type Processor interface {
	Process(ctx context.Context, job *models.ActionJob) (map[string]any, error)
}

// ProcessorFactory builds processors for one action type from a stage-level
// config map.
type ProcessorFactory interface {
	// ID is the action type this factory serves.
	ID() string

	// Schema is the JSON schema the stage config must satisfy.
	Schema() map[string]any

	Create(config map[string]any) (Processor, error)
}
