package controllers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/meinhoongagan/booking-platform/middleware"
	"github.com/meinhoongagan/booking-platform/usecase"
)

type DashboardController struct {
	dashboard *usecase.DashboardUsecase
	log       *zap.Logger
}

func NewDashboardController(dashboard *usecase.DashboardUsecase, log *zap.Logger) *DashboardController {
	return &DashboardController{dashboard: dashboard, log: log}
}

// GetStats answers for the caller's scope; providerId may only name it.
func (h *DashboardController) GetStats(c *fiber.Ctx) error {
	var providerID uint
	if pid := c.QueryInt("providerId"); pid > 0 {
		providerID = uint(pid)
	}
	stats, err := h.dashboard.Stats(c.UserContext(), middleware.UserID(c), providerID)
	if err != nil {
		return fail(c, h.log, "Failed to load dashboard", err)
	}
	return c.JSON(stats)
}
