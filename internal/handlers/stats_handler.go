package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-matcher/internal/middleware"
	"alfredoptarigan/resume-matcher/internal/services"
)

type StatsHandler struct {
	historyService services.HistoryService
}

func NewStatsHandler(historyService services.HistoryService) *StatsHandler {
	return &StatsHandler{historyService: historyService}
}

// HandleStats handles GET /stats
func (h *StatsHandler) HandleStats(c *fiber.Ctx) error {
	stats, err := h.historyService.Stats(c.UserContext(), middleware.OwnerID(c))
	if err != nil {
		return err
	}
	return c.JSON(stats)
}

// HandleTrend handles GET /stats/trend
func (h *StatsHandler) HandleTrend(c *fiber.Ctx) error {
	points, err := h.historyService.Trend(c.UserContext(), middleware.OwnerID(c), c.QueryInt("limit"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"points": points})
}
