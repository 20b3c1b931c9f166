// Package web provides the operational HTTP surface: health, queue
// monitoring and control, and read-only instance inspection.
package web

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/hireflow/hireflow/pkg/persistence"
	"github.com/hireflow/hireflow/pkg/queue"
	"github.com/hireflow/hireflow/pkg/registry"
)

type APIHandlers struct {
	store      persistence.Persistence
	dispatcher *queue.Dispatcher
	registry   *registry.Registry
}

func NewAPIHandlers(store persistence.Persistence, dispatcher *queue.Dispatcher, registry *registry.Registry) *APIHandlers {
	return &APIHandlers{
		store:      store,
		dispatcher: dispatcher,
		registry:   registry,
	}
}

// Register attaches every route to the app.
func (h *APIHandlers) Register(app *fiber.App) {
	app.Get("/health", h.HealthCheck)

	queues := app.Group("/queues")
	queues.Get("/stats", h.GetQueueStats)
	queues.Post("/pause", h.PauseQueues)
	queues.Post("/resume", h.ResumeQueues)
	queues.Post("/cleanup", h.CleanupQueues)

	app.Get("/instances/:candidateId/:jobId", h.GetInstance)
	app.Get("/workflows/:id", h.GetDefinition)
	app.Get("/actions", h.GetActionTypes)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	status := "healthy"
	message := "Hireflow API is healthy"
	httpStatus := http.StatusOK

	repositoryCheck := "ok"
	if err := h.store.HealthCheck(c.Context()); err != nil {
		status = "unhealthy"
		message = "Hireflow API is unhealthy"
		httpStatus = http.StatusInternalServerError
		repositoryCheck = err.Error()
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

func (h *APIHandlers) GetQueueStats(c fiber.Ctx) error {
	stats, err := h.dispatcher.GetQueueStats(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{
		"paused": h.dispatcher.Paused(),
		"queues": stats,
	})
}

func (h *APIHandlers) PauseQueues(c fiber.Ctx) error {
	h.dispatcher.PauseQueues(c.Context())

	return c.JSON(fiber.Map{"paused": true})
}

func (h *APIHandlers) ResumeQueues(c fiber.Ctx) error {
	h.dispatcher.ResumeQueues(c.Context())

	return c.JSON(fiber.Map{"paused": false})
}

func (h *APIHandlers) CleanupQueues(c fiber.Ctx) error {
	removed, err := h.dispatcher.CleanupQueues(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{"removed": removed})
}

func (h *APIHandlers) GetInstance(c fiber.Ctx) error {
	candidateID := c.Params("candidateId")
	jobID := c.Params("jobId")

	if candidateID == "" || jobID == "" {
		return badRequest(c, "Candidate ID and job ID are required")
	}

	instance, err := h.store.InstanceByPair(c.Context(), candidateID, jobID)
	if err != nil {
		if persistence.IsInstanceNotFound(err) {
			return notFound(c, "Workflow instance not found")
		}

		return internalError(c, err)
	}

	return c.JSON(instance)
}

func (h *APIHandlers) GetDefinition(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	definition, err := h.store.DefinitionByID(c.Context(), id)
	if err != nil {
		if persistence.IsDefinitionNotFound(err) {
			return notFound(c, "Workflow definition not found")
		}

		return internalError(c, err)
	}

	return c.JSON(definition)
}

func (h *APIHandlers) GetActionTypes(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"action_types": h.registry.AvailableTypes()})
}
