package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-matcher/internal/middleware"
	"alfredoptarigan/resume-matcher/internal/services"
)

type ResultHandler struct {
	historyService services.HistoryService
}

func NewResultHandler(historyService services.HistoryService) *ResultHandler {
	return &ResultHandler{
		historyService: historyService,
	}
}

// HandleGetResult handles GET /analyses/:id
func (h *ResultHandler) HandleGetResult(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	resp, err := h.historyService.Get(c.UserContext(), middleware.OwnerID(c), id)
	if err != nil {
		return err
	}

	return c.JSON(resp)
}

// HandleRelated handles GET /analyses/:id/related
func (h *ResultHandler) HandleRelated(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	items, err := h.historyService.Related(c.UserContext(), middleware.OwnerID(c), id, c.QueryInt("limit"))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"items": items})
}
