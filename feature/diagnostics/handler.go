package diagnostics

import (
	"github.com/gofiber/fiber/v2"
)

// Handler handles HTTP requests for diagnostics.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the diagnostics routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get("/diagnostics", h.HandleRunChecks)
}

// HandleRunChecks probes all dependencies and reports their health.
// @Summary Run Diagnostics
// @Description Check database connectivity and sync table schemas, report bucket reachability, and both inventory source endpoints.
// @Tags diagnostics
// @Accept json
// @Produce json
// @Success 200 {object} Report "All Checks Passed"
// @Failure 503 {object} Report "One Or More Checks Failed"
// @Router /diagnostics [get]
func (h *Handler) HandleRunChecks(c *fiber.Ctx) error {
	report := h.service.RunChecks(c.Context())
	if !report.Healthy {
		return c.Status(fiber.StatusServiceUnavailable).JSON(report)
	}
	return c.JSON(report)
}
