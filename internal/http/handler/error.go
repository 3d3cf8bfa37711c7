package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"docfill/internal/http/middleware"
	"docfill/internal/service"
	"docfill/internal/session"
	"docfill/internal/validation"
)

// validationTip accompanies every 422 response.
const validationTip = "Виправте вказані поля та надішліть їх ще раз. Інші відповіді збережено не було."

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// validationPayload is the 422 body of a rejected answer batch.
type validationPayload struct {
	errorPayload
	ValidationErrors []validation.FieldError `json:"validation_errors"`
	Tip              string                  `json:"tip"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_ID", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

// respondError translates a service error into its HTTP response.
// Unrecognized errors are logged and reported as 500.
func respondError(c *fiber.Ctx, log *zap.Logger, err error) error {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(validationPayload{
			errorPayload: errorPayload{
				RequestID: requestIDFromCtx(c),
				Error:     errorEnvelope{Code: "VALIDATION_FAILED", Message: "some answers are invalid"},
			},
			ValidationErrors: verr.Fields,
			Tip:              validationTip,
		})
	case errors.Is(err, service.ErrIDRequired):
		return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "id is required")
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "session not found")
	case errors.Is(err, service.ErrDocumentTypeNotFound):
		return writeError(c, fiber.StatusNotFound, "DOCUMENT_TYPE_NOT_FOUND", "document type not found")
	case errors.Is(err, service.ErrArtifactNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "artifact not found")
	case errors.Is(err, service.ErrTemplateNotFound):
		return writeError(c, fiber.StatusNotFound, "TEMPLATE_NOT_FOUND", "template is not uploaded for this document type")
	case errors.Is(err, service.ErrInvalidTemplate):
		return writeError(c, fiber.StatusBadRequest, "INVALID_TEMPLATE", "template is not a valid docx document")
	case errors.Is(err, service.ErrIncomplete):
		return writeError(c, fiber.StatusConflict, "INCOMPLETE", err.Error())
	case errors.Is(err, service.ErrSessionClosed):
		return writeError(c, fiber.StatusConflict, "SESSION_CLOSED", "session is signed and can no longer change")
	case errors.Is(err, session.ErrInvalidTransition):
		return writeError(c, fiber.StatusConflict, "INVALID_TRANSITION", "session status does not allow this operation")
	default:
		log.Error("request failed",
			zap.String("request_id", requestIDFromCtx(c)),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "PAYLOAD_TOO_LARGE", "request body is too large")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
