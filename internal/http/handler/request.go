package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"docfill/internal/gateway"
	"docfill/internal/service"
)

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// StartSessionRequest starts a session for a document type code or alias.
type StartSessionRequest struct {
	DocumentType string `json:"document_type" validate:"required,max=100"`
}

// AnswersRequest is a partial answer batch keyed by field.
type AnswersRequest struct {
	Answers map[string]any `json:"answers" validate:"required"`
}

// HistoryMessage is one prior chat turn. Roles other than bot/assistant are treated as user.
type HistoryMessage struct {
	Role    string `json:"role" validate:"required,max=20"`
	Content string `json:"content" validate:"max=4000"`
}

// ChatRequest is one conversational turn. GroupFields pins the target group explicitly.
type ChatRequest struct {
	Message     string           `json:"message" validate:"required,max=4000"`
	History     []HistoryMessage `json:"history" validate:"max=100,dive"`
	GroupFields []string         `json:"group_fields" validate:"max=50,dive,required,max=100"`
	Strict      bool             `json:"strict"`
}

func (r ChatRequest) input() service.ChatInput {
	in := service.ChatInput{
		Message:     strings.TrimSpace(r.Message),
		GroupFields: r.GroupFields,
		Strict:      r.Strict,
	}
	for _, m := range r.History {
		in.History = append(in.History, gateway.Message{Role: gateway.NormalizeRole(m.Role), Content: m.Content})
	}
	return in
}

// bind parses a JSON body into dst and validates it. The returned error is safe to show.
func bind(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return errors.New("request body must be a JSON object")
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		msgs := make([]string, len(verrs))
		for i, fe := range verrs {
			msgs[i] = describeTag(fe)
		}
		return errors.New(strings.Join(msgs, "; "))
	}
	return nil
}

func describeTag(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s long", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
	}
}

// idParam validates a uuid path parameter.
func idParam(c *fiber.Ctx, name string) (string, bool) {
	id := c.Params(name)
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

// pageParams reads limit and offset with the defaults 10 and 0.
func pageParams(c *fiber.Ctx) (limit, offset int, code, msg string) {
	limit, err := strconv.Atoi(c.Query("limit", "10"))
	if err != nil {
		return 0, 0, "INVALID_LIMIT", "invalid limit"
	}
	offset, err = strconv.Atoi(c.Query("offset", "0"))
	if err != nil {
		return 0, 0, "INVALID_OFFSET", "invalid offset"
	}
	return limit, offset, "", ""
}
