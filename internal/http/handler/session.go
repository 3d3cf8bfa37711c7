package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"docfill/internal/service"
)

// StartSession creates a draft session and returns its greeting.
//
// @Summary Start a session
// @Tags sessions
// @Accept json
// @Produce json
// @Param body body StartSessionRequest true "Document type"
// @Success 201 {object} service.StartResult
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /sessions [post]
func StartSession(svc service.SessionService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req StartSessionRequest
		if err := bind(c, &req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", err.Error())
		}

		res, err := svc.Start(c.UserContext(), req.DocumentType)
		if err != nil {
			return respondError(c, log, err)
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// GetSession returns a session by ID.
//
// @Summary Get a session
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} model.Session
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /sessions/{id} [get]
func GetSession(svc service.SessionService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := idParam(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		sess, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(sess)
	}
}

// SubmitAnswers merges a partial answer batch. Strict (the default) rejects the whole batch
// when any supplied field is invalid.
//
// @Summary Submit answers
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param strict query bool false "Reject the whole batch on any invalid field" default(true)
// @Param body body AnswersRequest true "Answers"
// @Success 200 {object} service.AnswerResult
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Failure 409 {object} errorPayload
// @Failure 422 {object} validationPayload
// @Router /sessions/{id}/answers [post]
func SubmitAnswers(svc service.SessionService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := idParam(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var req AnswersRequest
		if err := bind(c, &req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", err.Error())
		}

		res, err := svc.SubmitAnswers(c.UserContext(), id, req.Answers, c.QueryBool("strict", true))
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(res)
	}
}

// Chat runs one conversational turn. The session is reviewed once every field is collected.
//
// @Summary Chat turn
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param body body ChatRequest true "Turn"
// @Success 200 {object} service.TurnResult
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Failure 409 {object} errorPayload
// @Failure 422 {object} validationPayload
// @Router /sessions/{id}/chat [post]
func Chat(svc service.SessionService, log *zap.Logger) fiber.Handler {
	return turn(svc.Chat, log)
}

// Review runs one review turn regardless of completeness.
//
// @Summary Review turn
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param body body ChatRequest true "Turn"
// @Success 200 {object} service.TurnResult
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Failure 409 {object} errorPayload
// @Router /sessions/{id}/review [post]
func Review(svc service.SessionService, log *zap.Logger) fiber.Handler {
	return turn(svc.Review, log)
}

// Ask answers a free consultation question about the session's document. Answers are not changed.
//
// @Summary Consultation question
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param body body ChatRequest true "Question"
// @Success 200 {object} service.TurnResult
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /sessions/{id}/ask [post]
func Ask(svc service.SessionService, log *zap.Logger) fiber.Handler {
	return turn(svc.Ask, log)
}

type turnFunc func(ctx context.Context, id string, in service.ChatInput) (*service.TurnResult, error)

func turn(run turnFunc, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := idParam(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var req ChatRequest
		if err := bind(c, &req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", err.Error())
		}

		res, err := run(c.UserContext(), id, req.input())
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(res)
	}
}

// Summary returns the formatted answers of a session.
//
// @Summary Session summary
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} service.SummaryResult
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /sessions/{id}/summary [get]
func Summary(svc service.SessionService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := idParam(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		res, err := svc.Summary(c.UserContext(), id)
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(res)
	}
}
