package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-matcher/internal/apperrors"
)

// StatusFor maps an error kind to the HTTP status returned to clients.
func StatusFor(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindValidation:
		return fiber.StatusBadRequest
	case apperrors.KindNotFound:
		return fiber.StatusNotFound
	case apperrors.KindContentBlocked:
		return fiber.StatusUnprocessableEntity
	case apperrors.KindTransport, apperrors.KindHTTP, apperrors.KindMalformedOutput:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandler renders every error returned by a handler as
// {"error", "kind", "code"} plus the fields specific to its kind.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{
			"error": fiberErr.Message,
			"kind":  "http_request",
			"code":  fiberErr.Code,
		})
	}

	kind := apperrors.KindOf(err)
	code := StatusFor(kind)
	body := fiber.Map{
		"error": err.Error(),
		"kind":  kind,
		"code":  code,
	}

	var (
		validationErr *apperrors.ValidationError
		httpErr       *apperrors.HTTPError
		blockedErr    *apperrors.ContentBlockedError
		malformedErr  *apperrors.MalformedOutputError
	)
	switch {
	case errors.As(err, &validationErr):
		body["error"] = validationErr.Message
		if validationErr.Field != "" {
			body["field"] = validationErr.Field
		}
	case errors.As(err, &httpErr):
		body["upstream_status"] = httpErr.Status
	case errors.As(err, &blockedErr):
		body["reason"] = blockedErr.Reason
	case errors.As(err, &malformedErr):
		body["raw_output"] = malformedErr.Raw
	}

	if code >= fiber.StatusInternalServerError {
		log.Printf("❌ %s %s: %v", c.Method(), c.Path(), err)
		if kind == apperrors.KindPersistence || kind == apperrors.KindUnknown {
			body["error"] = "Internal server error"
		}
	}

	return c.Status(code).JSON(body)
}
