// Package storage holds templates and rendered artifacts in an S3-compatible object store.
// Implementations stream content and never touch local disk.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"time"
)

// ErrNotFound is returned when an object does not exist.
var ErrNotFound = errors.New("object not found")

// DocxContentType is the media type of rendered artifacts and templates.
const DocxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1 and the implementation
// will buffer/chunk as supported by the backend.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is an S3-compatible object storage client.
type Storage interface {
	// Put uploads an object under the given key using the provided reader and options.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get retrieves an object's content as a streaming reader alongside its info.
	// A missing object yields ErrNotFound.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Delete removes an object by key.
	Delete(ctx context.Context, key string) error
	// PresignGet returns a time-limited URL that can be used to download the object without credentials.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// TemplateKey is where the template of a document type is stored.
func TemplateKey(code string) string {
	return path.Join("templates", code+".docx")
}

// ArtifactKey is where a rendered artifact is stored. Every artifact id gets its own object.
func ArtifactKey(sessionID, artifactID string) string {
	return path.Join("artifacts", sessionID, artifactID+".docx")
}

// SignedKey is where the signed variant of an artifact is stored. ext includes the leading dot.
func SignedKey(sessionID, artifactID, ext string) string {
	if ext == "" {
		ext = ".docx"
	}
	return path.Join("artifacts", sessionID, artifactID+".signed"+ext)
}
