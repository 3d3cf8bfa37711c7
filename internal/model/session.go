package model

import "time"

// SessionStatus is the lifecycle state of a Session.
type SessionStatus string

const (
	SessionDraft     SessionStatus = "draft"
	SessionCompleted SessionStatus = "completed"
	SessionSigned    SessionStatus = "signed"
)

// Session is one in-progress document-filling conversation.
// Answers hold validated, canonical values keyed by lowercase field key.
type Session struct {
	ID               string            `json:"id"`
	DocumentTypeCode string            `json:"document_type"`
	Answers          map[string]string `json:"answers"`
	Status           SessionStatus     `json:"status"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// Artifact is a rendered document produced from a Session.
type Artifact struct {
	ID               string    `json:"id"`
	SessionID        string    `json:"session_id"`
	StorageKey       string    `json:"storage_key"`
	SignedStorageKey string    `json:"signed_storage_key,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}
