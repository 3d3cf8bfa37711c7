// Package session holds the state rules of a document-filling session: how answers are merged
// and which status transitions are legal. It performs no I/O.
package session

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"docfill/internal/model"
	"docfill/internal/validation"
)

// ErrInvalidTransition is returned for a status change that the lifecycle does not allow.
var ErrInvalidTransition = errors.New("invalid session status transition")

// Validator normalizes candidate answers for a document type.
type Validator interface {
	ValidateAll(code string, answers map[string]any) validation.Result
}

// MergeResult reports what a merge committed. Skipped lists fields rejected in lenient mode.
type MergeResult struct {
	Committed []string                `json:"committed"`
	Skipped   []validation.FieldError `json:"skipped,omitempty"`
}

// New creates a draft session with no answers.
func New(documentType string, now time.Time) *model.Session {
	return &model.Session{
		ID:               uuid.NewString(),
		DocumentTypeCode: documentType,
		Answers:          map[string]string{},
		Status:           model.SessionDraft,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// Merge validates values and commits the accepted ones into s.Answers.
//
// Keys are case-folded and blank values are ignored. In strict mode any rejected field aborts the
// merge and a *validation.Error is returned with s untouched. In lenient mode accepted fields are
// committed and rejected ones are reported in MergeResult.Skipped.
func Merge(s *model.Session, v Validator, values map[string]any, strict bool, now time.Time) (MergeResult, error) {
	var out MergeResult

	res := v.ValidateAll(s.DocumentTypeCode, values)
	if !res.Valid {
		if strict {
			return out, &validation.Error{Fields: res.Errors}
		}
		out.Skipped = res.Errors
	}
	if len(res.Values) == 0 {
		return out, nil
	}

	if s.Answers == nil {
		s.Answers = make(map[string]string, len(res.Values))
	}
	for k, val := range res.Values {
		s.Answers[k] = val
		out.Committed = append(out.Committed, k)
	}
	sort.Strings(out.Committed)
	s.UpdatedAt = now
	return out, nil
}

// MarkCompleted moves a draft session to completed.
func MarkCompleted(s *model.Session, now time.Time) error {
	return transition(s, model.SessionDraft, model.SessionCompleted, now)
}

// MarkSigned moves a completed session to signed.
func MarkSigned(s *model.Session, now time.Time) error {
	return transition(s, model.SessionCompleted, model.SessionSigned, now)
}

func transition(s *model.Session, from, to model.SessionStatus, now time.Time) error {
	if s.Status != from {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.Status, to)
	}
	s.Status = to
	s.UpdatedAt = now
	return nil
}
