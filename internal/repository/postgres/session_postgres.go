package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"docfill/internal/model"
	"docfill/internal/repository"
)

// SessionPostgres stores sessions with their answers as a jsonb object.
type SessionPostgres struct {
	db *sql.DB
}

// NewSessionPostgres creates a new SessionPostgres repository.
func NewSessionPostgres(db *sql.DB) *SessionPostgres {
	return &SessionPostgres{db: db}
}

var _ repository.SessionRepository = (*SessionPostgres)(nil)

// Create inserts a new session row.
func (r *SessionPostgres) Create(ctx context.Context, s *model.Session) error {
	answers, err := encodeAnswers(s.Answers)
	if err != nil {
		return err
	}
	const q = `
		INSERT INTO sessions (id, document_type, answers, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = r.db.ExecContext(ctx, q, s.ID, s.DocumentTypeCode, answers, string(s.Status), s.CreatedAt, s.UpdatedAt)
	return err
}

// FindByID fetches a session by its ID.
func (r *SessionPostgres) FindByID(ctx context.Context, id string) (*model.Session, error) {
	const q = `
		SELECT id, document_type, answers, status, created_at, updated_at
		FROM sessions
		WHERE id = $1
	`
	var (
		s       model.Session
		answers []byte
		status  string
	)
	err := r.db.QueryRowContext(ctx, q, id).Scan(&s.ID, &s.DocumentTypeCode, &answers, &status, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("session %q: %w", id, repository.ErrNotFound)
		}
		return nil, err
	}
	s.Status = model.SessionStatus(status)
	s.Answers = map[string]string{}
	if len(answers) > 0 {
		if err := json.Unmarshal(answers, &s.Answers); err != nil {
			return nil, fmt.Errorf("decode answers of session %q: %w", id, err)
		}
	}
	return &s, nil
}

// Update overwrites the answers, status and update time of a session.
func (r *SessionPostgres) Update(ctx context.Context, s *model.Session) error {
	answers, err := encodeAnswers(s.Answers)
	if err != nil {
		return err
	}
	const q = `
		UPDATE sessions
		SET answers = $2, status = $3, updated_at = $4
		WHERE id = $1
	`
	return execOne(ctx, r.db, q, "session "+s.ID, s.ID, answers, string(s.Status), s.UpdatedAt)
}

func encodeAnswers(a map[string]string) ([]byte, error) {
	if a == nil {
		a = map[string]string{}
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("encode answers: %w", err)
	}
	return b, nil
}
