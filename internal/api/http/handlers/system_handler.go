package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/medops-hub/workorder-service/internal/observability"
	"github.com/medops-hub/workorder-service/internal/service"
)

// Sweeper runs one auto-close pass.
type Sweeper interface {
	Sweep(ctx context.Context) (service.SweepResult, error)
}

// SystemHandler serves scheduler and operator endpoints.
type SystemHandler struct {
	sweeper Sweeper
	metrics *observability.Metrics
}

// NewSystemHandler constructs handler.
func NewSystemHandler(sweeper Sweeper, metrics *observability.Metrics) *SystemHandler {
	return &SystemHandler{sweeper: sweeper, metrics: metrics}
}

// Sweep POST /internal/auto-close/sweep.
func (h *SystemHandler) Sweep(c *fiber.Ctx) error {
	result, err := h.sweeper.Sweep(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": result})
}

// Metrics GET /metrics.
func (h *SystemHandler) Metrics(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.metrics.Snapshot()})
}
