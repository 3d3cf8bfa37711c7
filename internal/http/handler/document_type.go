package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"docfill/internal/service"
)

// ListDocumentTypes returns every document type with its collection groups.
//
// @Summary List document types
// @Tags document-types
// @Produce json
// @Success 200 {object} map[string][]service.DocumentTypeView
// @Failure 500 {object} errorPayload
// @Router /document-types [get]
func ListDocumentTypes(svc service.SessionService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.ListDocumentTypes(c.UserContext())
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(fiber.Map{"data": items})
	}
}

// UploadTemplate stores a docx template (multipart/form-data, field name: file).
//
// @Summary Upload a document template
// @Tags document-types
// @Accept multipart/form-data
// @Produce json
// @Param code path string true "Document type code"
// @Param file formData file true "docx template"
// @Success 200 {object} service.TemplateInfo
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /document-types/{code}/template [put]
func UploadTemplate(svc service.SessionService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		info, err := svc.UploadTemplate(c.UserContext(), c.Params("code"), f, fh.Size)
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(info)
	}
}
