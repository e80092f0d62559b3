package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-matcher/internal/apperrors"
	"alfredoptarigan/resume-matcher/internal/middleware"
	"alfredoptarigan/resume-matcher/internal/models"
	"alfredoptarigan/resume-matcher/internal/services"
)

const ResumeFormField = "resume_file"

type UploadHandler struct {
	uploadService services.UploadService
}

func NewUploadHandler(uploadService services.UploadService) *UploadHandler {
	return &UploadHandler{
		uploadService: uploadService,
	}
}

// HandleUpload handles POST /uploads
func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile(ResumeFormField)
	if err != nil {
		return apperrors.Validation(ResumeFormField, "Please select a valid resume file.")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return apperrors.Validation(ResumeFormField, "Please select a valid resume file.")
	}
	defer file.Close()

	upload, err := h.uploadService.Ingest(c.UserContext(), middleware.OwnerID(c), services.UploadFile{
		Filename: fileHeader.Filename,
		Size:     fileHeader.Size,
		Content:  file,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(models.NewUploadResponse(upload))
}

// HandleList handles GET /uploads
func (h *UploadHandler) HandleList(c *fiber.Ctx) error {
	uploads, err := h.uploadService.ListRecent(c.UserContext(), middleware.OwnerID(c), c.QueryInt("limit"))
	if err != nil {
		return err
	}

	responses := make([]models.UploadResponse, 0, len(uploads))
	for i := range uploads {
		responses = append(responses, models.NewUploadResponse(&uploads[i]))
	}

	return c.JSON(fiber.Map{"items": responses})
}
