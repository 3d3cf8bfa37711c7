package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"docfill/internal/model"
	"docfill/internal/repository"
)

// ArtifactPostgres is a PostgreSQL implementation of repository.ArtifactRepository.
type ArtifactPostgres struct {
	db *sql.DB
}

// NewArtifactPostgres creates a new ArtifactPostgres repository.
func NewArtifactPostgres(db *sql.DB) *ArtifactPostgres {
	return &ArtifactPostgres{db: db}
}

var _ repository.ArtifactRepository = (*ArtifactPostgres)(nil)

// Create inserts a new artifact row.
func (r *ArtifactPostgres) Create(ctx context.Context, a *model.Artifact) error {
	const q = `
		INSERT INTO artifacts (id, session_id, storage_key, signed_storage_key, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5)
	`
	_, err := r.db.ExecContext(ctx, q, a.ID, a.SessionID, a.StorageKey, a.SignedStorageKey, a.CreatedAt)
	return err
}

// FindByID fetches an artifact by its ID.
func (r *ArtifactPostgres) FindByID(ctx context.Context, id string) (*model.Artifact, error) {
	const q = `
		SELECT id, session_id, storage_key, COALESCE(signed_storage_key, ''), created_at
		FROM artifacts
		WHERE id = $1
	`
	var a model.Artifact
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&a.ID, &a.SessionID, &a.StorageKey, &a.SignedStorageKey, &a.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("artifact %q: %w", id, repository.ErrNotFound)
		}
		return nil, err
	}
	return &a, nil
}

// AttachSigned records the object key of the signed variant.
func (r *ArtifactPostgres) AttachSigned(ctx context.Context, id, key string) error {
	const q = `UPDATE artifacts SET signed_storage_key = $2 WHERE id = $1`
	return execOne(ctx, r.db, q, "artifact "+id, id, key)
}

// ListBySession returns a session's artifacts using LIMIT/OFFSET pagination and a total count.
func (r *ArtifactPostgres) ListBySession(ctx context.Context, sessionID string, pq repository.PageQuery) (*repository.PageResult[model.Artifact], error) {
	const qCount = `SELECT COUNT(*) FROM artifacts WHERE session_id = $1`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, sessionID).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT id, session_id, storage_key, COALESCE(signed_storage_key, ''), created_at
		FROM artifacts
		WHERE session_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, qList, sessionID, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Artifact, 0)
	for rows.Next() {
		var a model.Artifact
		if err := rows.Scan(&a.ID, &a.SessionID, &a.StorageKey, &a.SignedStorageKey, &a.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Artifact]{
		Items: items,
		Total: total,
	}, nil
}
