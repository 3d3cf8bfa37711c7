package mocks

import (
	"context"

	"docfill/internal/gateway"

	"github.com/stretchr/testify/mock"
)

type MockClient struct {
	mock.Mock
}

func (m *MockClient) Complete(ctx context.Context, system string, history []gateway.Message, utterance string, opts ...gateway.Option) (string, error) {
	args := m.Called(ctx, system, history, utterance)
	return args.String(0), args.Error(1)
}
