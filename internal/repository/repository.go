// Package repository contains data access layer abstractions.
// Implementations live in subpackages (postgres, memory) inside this directory.
package repository

import (
	"context"
	"errors"

	"docfill/internal/model"
)

// ErrNotFound is returned when a record with the requested key does not exist.
var ErrNotFound = errors.New("record not found")

// DocumentTypeRepository reads document type reference data.
type DocumentTypeRepository interface {
	// List returns every document type ordered by code.
	List(ctx context.Context) ([]model.DocumentType, error)

	// FindByCode returns a document type by its code.
	FindByCode(ctx context.Context, code string) (*model.DocumentType, error)

	// SetTemplateKey points a document type at a new template object.
	SetTemplateKey(ctx context.Context, code, key string) error
}

// SessionRepository persists sessions. Update is last-write-wins over the whole record.
type SessionRepository interface {
	Create(ctx context.Context, s *model.Session) error
	FindByID(ctx context.Context, id string) (*model.Session, error)
	Update(ctx context.Context, s *model.Session) error
}

// ArtifactRepository persists rendered artifacts. Artifacts are immutable except for the
// signed variant key.
type ArtifactRepository interface {
	Create(ctx context.Context, a *model.Artifact) error
	FindByID(ctx context.Context, id string) (*model.Artifact, error)
	AttachSigned(ctx context.Context, id, key string) error

	// ListBySession returns a page of a session's artifacts, newest first, with the total count.
	ListBySession(ctx context.Context, sessionID string, pq PageQuery) (*PageResult[model.Artifact], error)
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
