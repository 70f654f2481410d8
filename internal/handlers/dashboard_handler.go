package handlers

import (
	"boutique/internal/services"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler serves the admin overview.
type DashboardHandler struct {
	service *services.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(service *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// RegisterAdminRoutes registers the dashboard route.
func (h *DashboardHandler) RegisterAdminRoutes(router fiber.Router) {
	router.Get("/dashboard", h.HandleStats)
}

// HandleStats returns today's revenue and orders and the oldest orders
// waiting to ship. The number of pending orders is set by ?pending=.
func (h *DashboardHandler) HandleStats(c *fiber.Ctx) error {
	limit := c.QueryInt("pending", services.DefaultPendingLimit)
	if limit <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "pending must be positive")
	}
	stats, err := h.service.Stats(c.UserContext(), limit)
	if err != nil {
		return respondError(c, err, "Could not load dashboard")
	}
	return c.JSON(stats)
}
