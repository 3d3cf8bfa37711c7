package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"docfill/internal/model"
	"docfill/internal/render"
	"docfill/internal/repository"
	"docfill/internal/session"
	"docfill/internal/storage"
)

func (s *sessionService) Generate(ctx context.Context, id string) (*GenerateResult, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	unlock := s.Locker.Lock(id)
	defer unlock()

	sess, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.generate(ctx, sess)
}

// generate renders the current answers into a freshly keyed artifact. The session moves from
// draft to completed only after the artifact is stored; any failure leaves its status unchanged.
func (s *sessionService) generate(ctx context.Context, sess *model.Session) (*GenerateResult, error) {
	if missing := s.missingFields(sess); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrIncomplete, missing)
	}

	dt, err := s.documentType(ctx, sess.DocumentTypeCode)
	if err != nil {
		return nil, err
	}
	tplKey := dt.TemplateKey
	if tplKey == "" {
		tplKey = storage.TemplateKey(dt.Code)
	}

	tpl, err := s.readObject(ctx, tplKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, tplKey)
		}
		return nil, fmt.Errorf("read template: %w", err)
	}

	content, err := render.Render(tpl, sess.Answers)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", tplKey, err)
	}

	art := &model.Artifact{
		ID:        uuid.New().String(),
		SessionID: sess.ID,
		CreatedAt: s.now(),
	}
	art.StorageKey = storage.ArtifactKey(sess.ID, art.ID)

	if _, err := s.Store.Put(ctx, art.StorageKey, bytes.NewReader(content), storage.PutObjectOptions{
		Size:        int64(len(content)),
		ContentType: storage.DocxContentType,
		Metadata:    map[string]string{"session-id": sess.ID},
	}); err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	if err := s.Artifacts.Create(ctx, art); err != nil {
		// Rollback: delete the object from storage
		if delErr := s.Store.Delete(ctx, art.StorageKey); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}

	if sess.Status == model.SessionDraft {
		prev := sess.Status
		if err := session.MarkCompleted(sess, s.now()); err != nil {
			return nil, err
		}
		if err := s.Sessions.Update(ctx, sess); err != nil {
			sess.Status = prev
			return nil, fmt.Errorf("save session: %w", err)
		}
	}

	s.Log.Info("document generated",
		zap.String("session_id", sess.ID),
		zap.String("artifact_id", art.ID),
		zap.Int("bytes", len(content)),
	)
	return &GenerateResult{
		Artifact: art,
		Filename: dt.Code + ".docx",
		Content:  content,
	}, nil
}

func (s *sessionService) ListArtifacts(ctx context.Context, sessionID string, limit, offset int) (*ArtifactListResult, error) {
	if _, err := s.load(ctx, sessionID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.Artifacts.ListBySession(ctx, sessionID, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &ArtifactListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *sessionService) GetArtifact(ctx context.Context, id string) (*ArtifactView, error) {
	art, err := s.artifact(ctx, id)
	if err != nil {
		return nil, err
	}

	view := &ArtifactView{Artifact: *art}
	if view.DownloadURL, err = s.Store.PresignGet(ctx, art.StorageKey, s.PresignExpiry); err != nil {
		return nil, fmt.Errorf("presign artifact: %w", err)
	}
	if art.SignedStorageKey != "" {
		if view.SignedURL, err = s.Store.PresignGet(ctx, art.SignedStorageKey, s.PresignExpiry); err != nil {
			return nil, fmt.Errorf("presign signed artifact: %w", err)
		}
	}
	return view, nil
}

func (s *sessionService) AttachSigned(ctx context.Context, id string, r io.Reader, filename, contentType string, size int64) (*model.Artifact, error) {
	if r == nil {
		return nil, ErrReaderNil
	}
	art, err := s.artifact(ctx, id)
	if err != nil {
		return nil, err
	}

	unlock := s.Locker.Lock(art.SessionID)
	defer unlock()

	sess, err := s.load(ctx, art.SessionID)
	if err != nil {
		return nil, err
	}
	if sess.Status == model.SessionDraft {
		return nil, fmt.Errorf("sign artifact of draft session: %w", session.ErrInvalidTransition)
	}

	key := storage.SignedKey(sess.ID, art.ID, filepath.Ext(filename))
	if _, err := s.Store.Put(ctx, key, r, storage.PutObjectOptions{
		Size:        size,
		ContentType: contentType,
		Metadata:    map[string]string{"original-filename": filename},
	}); err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}
	if err := s.Artifacts.AttachSigned(ctx, art.ID, key); err != nil {
		return nil, fmt.Errorf("save signed key: %w", err)
	}
	art.SignedStorageKey = key

	if sess.Status == model.SessionCompleted {
		if err := session.MarkSigned(sess, s.now()); err != nil {
			return nil, err
		}
		if err := s.Sessions.Update(ctx, sess); err != nil {
			return nil, fmt.Errorf("save session: %w", err)
		}
	}
	return art, nil
}

func (s *sessionService) artifact(ctx context.Context, id string) (*model.Artifact, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	art, err := s.Artifacts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrArtifactNotFound
		}
		return nil, err
	}
	return art, nil
}

func (s *sessionService) readObject(ctx context.Context, key string) ([]byte, error) {
	rc, _, err := s.Store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
