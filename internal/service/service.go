package service

import (
	"context"
	"errors"
	"io"
	"time"

	"go.uber.org/zap"

	"docfill/internal/catalog"
	"docfill/internal/collect"
	"docfill/internal/gateway"
	"docfill/internal/model"
	"docfill/internal/repository"
	"docfill/internal/session"
	"docfill/internal/storage"
	"docfill/internal/validation"
)

var (
	ErrIDRequired           = errors.New("id is required")
	ErrReaderNil            = errors.New("reader is nil")
	ErrNotFound             = errors.New("session not found")
	ErrDocumentTypeNotFound = errors.New("document type not found")
	ErrArtifactNotFound     = errors.New("artifact not found")
	ErrTemplateNotFound     = errors.New("template not found")
	ErrInvalidTemplate      = errors.New("template is not a valid docx document")
	ErrIncomplete           = errors.New("session is missing required answers")
	ErrSessionClosed        = errors.New("session is signed and can no longer change")
)

// DocumentTypeView is a document type together with its collection groups.
type DocumentTypeView struct {
	model.DocumentType
	Groups []model.FieldGroup `json:"groups"`
}

// TemplateInfo describes an uploaded template. Unknown lists placeholders with no catalog field.
type TemplateInfo struct {
	Code         string   `json:"code"`
	TemplateKey  string   `json:"template_key"`
	Placeholders []string `json:"placeholders"`
	Unknown      []string `json:"unknown_placeholders,omitempty"`
}

// StartResult is a freshly created session with the greeting that opens the dialogue.
type StartResult struct {
	Session  *model.Session     `json:"session"`
	Groups   []model.FieldGroup `json:"groups"`
	Greeting string             `json:"greeting"`
}

// AnswerResult reports a direct answer submission.
type AnswerResult struct {
	Session   *model.Session          `json:"session"`
	Committed []string                `json:"committed"`
	Skipped   []validation.FieldError `json:"skipped,omitempty"`
	NextGroup *model.FieldGroup       `json:"next_group,omitempty"`
	Complete  bool                    `json:"complete"`
}

// ChatInput is one conversational turn as sent by a client.
type ChatInput struct {
	Message     string
	History     []gateway.Message
	GroupFields []string
	Strict      bool
}

// TurnResult is a turn outcome. Artifact is set when the turn generated the document.
type TurnResult struct {
	collect.Outcome
	Session  *model.Session  `json:"session"`
	Artifact *model.Artifact `json:"artifact,omitempty"`
}

// SummaryResult is the formatted review text of a session.
type SummaryResult struct {
	Summary  string            `json:"summary"`
	Answers  map[string]string `json:"answers"`
	Complete bool              `json:"complete"`
}

// GenerateResult is a rendered artifact and its content.
type GenerateResult struct {
	Artifact *model.Artifact
	Filename string
	Content  []byte
}

// ArtifactListResult is the service-level DTO for paginated artifacts.
type ArtifactListResult struct {
	Items []model.Artifact `json:"data"`
	Total int              `json:"total"`
}

// ArtifactView is an artifact with time-limited download links.
type ArtifactView struct {
	model.Artifact
	DownloadURL string `json:"download_url"`
	SignedURL   string `json:"signed_url,omitempty"`
}

// SessionService defines the document-filling use cases.
type SessionService interface {
	// ListDocumentTypes returns every document type with its groups.
	ListDocumentTypes(ctx context.Context) ([]DocumentTypeView, error)

	// UploadTemplate stores r as the template of a document type.
	UploadTemplate(ctx context.Context, code string, r io.Reader, size int64) (*TemplateInfo, error)

	// Start creates a draft session. Unknown document types yield ErrDocumentTypeNotFound.
	Start(ctx context.Context, documentType string) (*StartResult, error)

	// Get returns a session by its ID.
	Get(ctx context.Context, id string) (*model.Session, error)

	// SubmitAnswers merges a partial answer batch. Strict submissions are atomic.
	SubmitAnswers(ctx context.Context, id string, values map[string]any, strict bool) (*AnswerResult, error)

	// Chat runs one turn: collect while fields are missing, review once the session is ready.
	Chat(ctx context.Context, id string, in ChatInput) (*TurnResult, error)

	// Review runs one review turn regardless of readiness.
	Review(ctx context.Context, id string, in ChatInput) (*TurnResult, error)

	// Ask answers a free consultation question in the context of the session's document.
	// It never changes the session.
	Ask(ctx context.Context, id string, in ChatInput) (*TurnResult, error)

	// Summary formats the current answers for review.
	Summary(ctx context.Context, id string) (*SummaryResult, error)

	// Generate renders the session's current answers into a new artifact.
	Generate(ctx context.Context, id string) (*GenerateResult, error)

	// ListArtifacts returns a session's artifacts using limit/offset and a total count.
	ListArtifacts(ctx context.Context, sessionID string, limit, offset int) (*ArtifactListResult, error)

	// GetArtifact returns an artifact with presigned download links.
	GetArtifact(ctx context.Context, id string) (*ArtifactView, error)

	// AttachSigned stores the signed variant of an artifact and marks its session signed.
	AttachSigned(ctx context.Context, id string, r io.Reader, filename, contentType string, size int64) (*model.Artifact, error)
}

// Deps are the collaborators of the session service.
type Deps struct {
	Catalog       *catalog.Catalog
	Validator     session.Validator
	Orchestrator  *collect.Orchestrator
	DocumentTypes repository.DocumentTypeRepository
	Sessions      repository.SessionRepository
	Artifacts     repository.ArtifactRepository
	Store         storage.Storage
	Locker        *session.Locker
	Log           *zap.Logger
	// PresignExpiry bounds the lifetime of download links. Defaults to 15 minutes.
	PresignExpiry time.Duration
}

// sessionService is a concrete implementation of SessionService.
type sessionService struct {
	Deps
	now func() time.Time
}

// NewSessionService constructs a new SessionService.
func NewSessionService(d Deps) SessionService {
	if d.Locker == nil {
		d.Locker = session.NewLocker()
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.PresignExpiry <= 0 {
		d.PresignExpiry = 15 * time.Minute
	}
	d.Log = d.Log.Named("service")
	return &sessionService{Deps: d, now: func() time.Time { return time.Now().UTC() }}
}

// load fetches a session, mapping a missing record to ErrNotFound.
func (s *sessionService) load(ctx context.Context, id string) (*model.Session, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	sess, err := s.Sessions.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return sess, nil
}

func (s *sessionService) documentType(ctx context.Context, code string) (*model.DocumentType, error) {
	dt, err := s.DocumentTypes.FindByCode(ctx, s.Catalog.Canonical(code))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDocumentTypeNotFound
		}
		return nil, err
	}
	return dt, nil
}
