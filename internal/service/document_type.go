package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"docfill/internal/render"
	"docfill/internal/storage"
)

// maxTemplateSize bounds template uploads read into memory.
const maxTemplateSize = 20 << 20

func (s *sessionService) ListDocumentTypes(ctx context.Context) ([]DocumentTypeView, error) {
	items, err := s.DocumentTypes.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]DocumentTypeView, len(items))
	for i, dt := range items {
		out[i] = DocumentTypeView{
			DocumentType: dt,
			Groups:       s.Catalog.FieldsFor(s.Catalog.Resolve(dt.Code)),
		}
	}
	return out, nil
}

// UploadTemplate checks that r is a docx package, stores it and points the document type at it.
func (s *sessionService) UploadTemplate(ctx context.Context, code string, r io.Reader, size int64) (*TemplateInfo, error) {
	if r == nil {
		return nil, ErrReaderNil
	}
	dt, err := s.documentType(ctx, code)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(r, maxTemplateSize+1))
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	if len(data) > maxTemplateSize {
		return nil, fmt.Errorf("%w: larger than %d bytes", ErrInvalidTemplate, maxTemplateSize)
	}

	keys, err := render.Placeholders(data)
	if err != nil {
		if errors.Is(err, render.ErrInvalidTemplate) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
		}
		return nil, err
	}

	key := storage.TemplateKey(dt.Code)
	if _, err := s.Store.Put(ctx, key, bytes.NewReader(data), storage.PutObjectOptions{
		Size:        int64(len(data)),
		ContentType: storage.DocxContentType,
		Metadata:    map[string]string{"document-type": dt.Code},
	}); err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}
	if err := s.DocumentTypes.SetTemplateKey(ctx, dt.Code, key); err != nil {
		return nil, fmt.Errorf("save template key: %w", err)
	}

	info := &TemplateInfo{Code: dt.Code, TemplateKey: key, Placeholders: keys}
	for _, k := range keys {
		if !s.Catalog.Known(k) {
			info.Unknown = append(info.Unknown, k)
		}
	}
	s.Log.Info("template uploaded",
		zap.String("document_type", dt.Code),
		zap.Int("placeholders", len(keys)),
		zap.Strings("unknown", info.Unknown),
	)
	return info, nil
}
