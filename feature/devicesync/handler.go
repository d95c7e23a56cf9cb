package devicesync

import (
	"errors"

	"device-sync/core/logger"
	"device-sync/feature/devicesync/engine"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for device synchronization.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the device-sync routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/sync")
	group.Post("/run", h.HandleTriggerRun)
	group.Get("/status", h.HandleGetStatus)
}

// HandleTriggerRun runs a full reconciliation and returns its report.
// @Summary Trigger Reconciliation Run
// @Description Fetch both device inventories, reconcile them, and persist the unified view. A partial run still returns 200 with the failures embedded in the report.
// @Tags sync
// @Accept json
// @Produce json
// @Success 200 {object} models.RunResult "Run Report"
// @Failure 409 {object} map[string]string "Run Already In Progress"
// @Failure 500 {object} models.RunResult "Fatal Run Failure"
// @Router /sync/run [post]
func (h *Handler) HandleTriggerRun(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	result, err := h.service.TriggerRun(c.Context())
	if errors.Is(err, engine.ErrRunInProgress) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if err != nil {
		l.Error("Reconciliation run failed", zap.Error(err))
		// The report carries the failure detail; result is always non-nil
		// for a started run.
		return c.Status(fiber.StatusInternalServerError).JSON(result)
	}

	return c.JSON(result)
}

// HandleGetStatus reports the engine state and the last run.
// @Summary Get Sync Status
// @Description Current engine phase, the persisted record of the last run, and per-state document counts.
// @Tags sync
// @Accept json
// @Produce json
// @Success 200 {object} Status "Sync Status"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /sync/status [get]
func (h *Handler) HandleGetStatus(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	status, err := h.service.GetStatus(c.Context())
	if err != nil {
		l.Error("Status lookup failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(status)
}
