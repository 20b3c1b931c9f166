// Package registry holds the processor factories and validates stage configs
// against each factory's schema before a processor is built.
package registry

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/hireflow/hireflow/pkg/protocol"
)

type Registry struct {
	logger    *slog.Logger
	factories map[string]protocol.ProcessorFactory
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:    logger.With("module", "registry"),
		factories: make(map[string]protocol.ProcessorFactory),
	}
}

func (r *Registry) Register(factory protocol.ProcessorFactory) {
	r.factories[factory.ID()] = factory
}

// Create validates the config against the factory's schema, then builds the
// processor.
func (r *Registry) Create(actionType string, config map[string]any) (protocol.Processor, error) {
	factory, ok := r.factories[actionType]
	if !ok {
		return nil, fmt.Errorf("action type '%s' not registered", actionType)
	}

	if err := validateJSONSchema(config, factory.Schema()); err != nil {
		return nil, fmt.Errorf("invalid config for action type '%s': %w", actionType, err)
	}

	return factory.Create(config)
}

// AvailableTypes lists the registered action types.
func (r *Registry) AvailableTypes() []string {
	types := make([]string, 0, len(r.factories))
	for actionType := range r.factories {
		types = append(types, actionType)
	}

	return types
}

func validateJSONSchema(config map[string]any, schema map[string]any) error {
	if schema == nil {
		return nil
	}

	if config == nil {
		config = map[string]any{}
	}

	schemaLoader := gojsonschema.NewGoLoader(schema)
	dataLoader := gojsonschema.NewGoLoader(config)

	result, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return err
	}

	if !result.Valid() {
		var errors []string
		for _, resultError := range result.Errors() {
			errors = append(errors, resultError.String())
		}

		return fmt.Errorf("JSON schema validation failed: %s", strings.Join(errors, "; "))
	}

	return nil
}
