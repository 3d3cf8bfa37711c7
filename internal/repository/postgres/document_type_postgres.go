package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"docfill/internal/model"
	"docfill/internal/repository"
)

// DocumentTypePostgres is a PostgreSQL implementation of repository.DocumentTypeRepository.
type DocumentTypePostgres struct {
	db *sql.DB
}

// NewDocumentTypePostgres creates a new DocumentTypePostgres repository.
func NewDocumentTypePostgres(db *sql.DB) *DocumentTypePostgres {
	return &DocumentTypePostgres{db: db}
}

var _ repository.DocumentTypeRepository = (*DocumentTypePostgres)(nil)

// List returns every document type ordered by code.
func (r *DocumentTypePostgres) List(ctx context.Context) ([]model.DocumentType, error) {
	const q = `
		SELECT code, name, template_key, created_at
		FROM document_types
		ORDER BY code
	`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.DocumentType, 0)
	for rows.Next() {
		var d model.DocumentType
		if err := rows.Scan(&d.Code, &d.Name, &d.TemplateKey, &d.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// FindByCode fetches a single document type.
func (r *DocumentTypePostgres) FindByCode(ctx context.Context, code string) (*model.DocumentType, error) {
	const q = `
		SELECT code, name, template_key, created_at
		FROM document_types
		WHERE code = $1
	`
	var d model.DocumentType
	if err := r.db.QueryRowContext(ctx, q, code).Scan(&d.Code, &d.Name, &d.TemplateKey, &d.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("document type %q: %w", code, repository.ErrNotFound)
		}
		return nil, err
	}
	return &d, nil
}

// SetTemplateKey updates the template object key of a document type.
func (r *DocumentTypePostgres) SetTemplateKey(ctx context.Context, code, key string) error {
	const q = `UPDATE document_types SET template_key = $2 WHERE code = $1`
	return execOne(ctx, r.db, q, "document type "+code, code, key)
}

// execOne runs a single-row statement and maps zero affected rows to repository.ErrNotFound.
func execOne(ctx context.Context, db *sql.DB, q, what string, args ...any) error {
	res, err := db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, repository.ErrNotFound)
	}
	return nil
}
