package mocks

import (
	"context"
	"io"

	"docfill/internal/model"
	"docfill/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) ListDocumentTypes(ctx context.Context) ([]service.DocumentTypeView, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.DocumentTypeView), args.Error(1)
}

func (m *MockSessionService) UploadTemplate(ctx context.Context, code string, r io.Reader, size int64) (*service.TemplateInfo, error) {
	args := m.Called(ctx, code, r, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TemplateInfo), args.Error(1)
}

func (m *MockSessionService) Start(ctx context.Context, documentType string) (*service.StartResult, error) {
	args := m.Called(ctx, documentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.StartResult), args.Error(1)
}

func (m *MockSessionService) Get(ctx context.Context, id string) (*model.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Session), args.Error(1)
}

func (m *MockSessionService) SubmitAnswers(ctx context.Context, id string, values map[string]any, strict bool) (*service.AnswerResult, error) {
	args := m.Called(ctx, id, values, strict)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AnswerResult), args.Error(1)
}

func (m *MockSessionService) Chat(ctx context.Context, id string, in service.ChatInput) (*service.TurnResult, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TurnResult), args.Error(1)
}

func (m *MockSessionService) Review(ctx context.Context, id string, in service.ChatInput) (*service.TurnResult, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TurnResult), args.Error(1)
}

func (m *MockSessionService) Ask(ctx context.Context, id string, in service.ChatInput) (*service.TurnResult, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TurnResult), args.Error(1)
}

func (m *MockSessionService) Summary(ctx context.Context, id string) (*service.SummaryResult, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SummaryResult), args.Error(1)
}

func (m *MockSessionService) Generate(ctx context.Context, id string) (*service.GenerateResult, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.GenerateResult), args.Error(1)
}

func (m *MockSessionService) ListArtifacts(ctx context.Context, sessionID string, limit, offset int) (*service.ArtifactListResult, error) {
	args := m.Called(ctx, sessionID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ArtifactListResult), args.Error(1)
}

func (m *MockSessionService) GetArtifact(ctx context.Context, id string) (*service.ArtifactView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ArtifactView), args.Error(1)
}

func (m *MockSessionService) AttachSigned(ctx context.Context, id string, r io.Reader, filename, contentType string, size int64) (*model.Artifact, error) {
	args := m.Called(ctx, id, r, filename, contentType, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Artifact), args.Error(1)
}
