package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"docfill/internal/service"
	"docfill/internal/storage"
)

// ArtifactIDHeader carries the id of a freshly generated artifact.
const ArtifactIDHeader = "X-Artifact-ID"

// Generate renders the session into a new docx artifact and returns its content.
//
// @Summary Generate the document
// @Tags sessions
// @Produce application/vnd.openxmlformats-officedocument.wordprocessingml.document
// @Param id path string true "Session ID"
// @Success 200 {file} binary
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Failure 409 {object} errorPayload
// @Router /sessions/{id}/generate [post]
func Generate(svc service.SessionService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := idParam(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		res, err := svc.Generate(c.UserContext(), id)
		if err != nil {
			return respondError(c, log, err)
		}

		c.Set(ArtifactIDHeader, res.Artifact.ID)
		c.Attachment(res.Filename)
		c.Set(fiber.HeaderContentType, storage.DocxContentType)
		return c.Send(res.Content)
	}
}

// ListArtifacts lists the artifacts of a session with limit & offset.
//
// @Summary List session artifacts
// @Tags artifacts
// @Produce json
// @Param id path string true "Session ID"
// @Param limit query int false "Page size" default(10)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} service.ArtifactListResult
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /sessions/{id}/artifacts [get]
func ListArtifacts(svc service.SessionService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := idParam(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		limit, offset, code, msg := pageParams(c)
		if code != "" {
			return writeError(c, fiber.StatusBadRequest, code, msg)
		}

		res, err := svc.ListArtifacts(c.UserContext(), id, limit, offset)
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(res)
	}
}

// GetArtifact returns an artifact with presigned download links.
//
// @Summary Get an artifact
// @Tags artifacts
// @Produce json
// @Param id path string true "Artifact ID"
// @Success 200 {object} service.ArtifactView
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /artifacts/{id} [get]
func GetArtifact(svc service.SessionService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := idParam(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		view, err := svc.GetArtifact(c.UserContext(), id)
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(view)
	}
}

// AttachSigned uploads the signed variant of an artifact (multipart/form-data, field name: file).
//
// @Summary Attach a signed variant
// @Tags artifacts
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Artifact ID"
// @Param file formData file true "Signed document"
// @Success 200 {object} model.Artifact
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Failure 409 {object} errorPayload
// @Router /artifacts/{id}/signed [post]
func AttachSigned(svc service.SessionService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := idParam(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		art, err := svc.AttachSigned(c.UserContext(), id, f, fh.Filename, ct, fh.Size)
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(art)
	}
}
