package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/medops-hub/workorder-service/internal/api/dto"
	"github.com/medops-hub/workorder-service/internal/domain"
	"github.com/medops-hub/workorder-service/internal/workflow"
)

// Statuses GET /work-orders/statuses returns the localized status table.
func Statuses(c *fiber.Ctx) error {
	locale := localeOf(c)
	items := make([]dto.StatusResponse, 0, len(domain.AllStatuses))
	for _, s := range domain.AllStatuses {
		items = append(items, dto.StatusResponse{
			Status:   s,
			Label:    workflow.DisplayName(s, locale),
			Color:    workflow.Color(s),
			Terminal: s.Terminal(),
		})
	}
	return c.JSON(fiber.Map{"data": items, "locale": locale})
}
