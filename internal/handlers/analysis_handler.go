package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-matcher/internal/middleware"
	"alfredoptarigan/resume-matcher/internal/models"
	"alfredoptarigan/resume-matcher/internal/services"
)

type AnalysisHandler struct {
	analysisService services.AnalysisService
	historyService  services.HistoryService
}

func NewAnalysisHandler(analysisService services.AnalysisService, historyService services.HistoryService) *AnalysisHandler {
	return &AnalysisHandler{
		analysisService: analysisService,
		historyService:  historyService,
	}
}

// HandleAnalyze handles POST /analyses. The call blocks until the model has
// answered and the result is stored.
func (h *AnalysisHandler) HandleAnalyze(c *fiber.Ctx) error {
	var req models.AnalyzeRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	resp, err := h.analysisService.Analyze(c.UserContext(), middleware.OwnerID(c), services.AnalyzeInput{
		UploadID:       req.UploadID,
		JobID:          req.JobID,
		JobDescription: req.JobDescription,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// HandleList handles GET /analyses
func (h *AnalysisHandler) HandleList(c *fiber.Ctx) error {
	resp, err := h.historyService.List(
		c.UserContext(),
		middleware.OwnerID(c),
		c.QueryInt("page", 1),
		c.QueryInt("page_size", services.DefaultPageSize),
	)
	if err != nil {
		return err
	}

	return c.JSON(resp)
}
