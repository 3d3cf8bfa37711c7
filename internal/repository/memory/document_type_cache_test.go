package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"docfill/internal/model"
	"docfill/internal/repository"
	"docfill/internal/repository/mocks"
)

func TestDocumentTypeCache_FindByCodeReadsThrough(t *testing.T) {
	repo := new(mocks.MockDocumentTypeRepository)
	dt := &model.DocumentType{Code: "nadannya_poslug", TemplateKey: "templates/nadannya_poslug.docx"}
	repo.On("FindByCode", mock.Anything, "nadannya_poslug").Return(dt, nil).Once()

	c := NewDocumentTypeCache(repo, time.Minute)
	for i := 0; i < 3; i++ {
		got, err := c.FindByCode(context.Background(), "nadannya_poslug")
		require.NoError(t, err)
		assert.Equal(t, dt, got)
	}
	repo.AssertExpectations(t)
}

func TestDocumentTypeCache_ErrorsAreNotCached(t *testing.T) {
	repo := new(mocks.MockDocumentTypeRepository)
	repo.On("FindByCode", mock.Anything, "x").Return(nil, repository.ErrNotFound).Twice()
	repo.On("List", mock.Anything).Return(nil, errors.New("db down")).Once()

	c := NewDocumentTypeCache(repo, time.Minute)
	for i := 0; i < 2; i++ {
		_, err := c.FindByCode(context.Background(), "x")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	}
	_, err := c.List(context.Background())
	assert.Error(t, err)
	repo.AssertExpectations(t)
}

func TestDocumentTypeCache_SetTemplateKeyInvalidates(t *testing.T) {
	repo := new(mocks.MockDocumentTypeRepository)
	old := &model.DocumentType{Code: "c", TemplateKey: "old"}
	updated := &model.DocumentType{Code: "c", TemplateKey: "new"}
	repo.On("FindByCode", mock.Anything, "c").Return(old, nil).Once()
	repo.On("List", mock.Anything).Return([]model.DocumentType{*old}, nil).Once()
	repo.On("SetTemplateKey", mock.Anything, "c", "new").Return(nil).Once()
	repo.On("FindByCode", mock.Anything, "c").Return(updated, nil).Once()
	repo.On("List", mock.Anything).Return([]model.DocumentType{*updated}, nil).Once()

	c := NewDocumentTypeCache(repo, time.Minute)
	ctx := context.Background()

	got, _ := c.FindByCode(ctx, "c")
	assert.Equal(t, "old", got.TemplateKey)
	list, _ := c.List(ctx)
	assert.Equal(t, "old", list[0].TemplateKey)

	require.NoError(t, c.SetTemplateKey(ctx, "c", "new"))

	got, _ = c.FindByCode(ctx, "c")
	assert.Equal(t, "new", got.TemplateKey)
	list, _ = c.List(ctx)
	assert.Equal(t, "new", list[0].TemplateKey)
	repo.AssertExpectations(t)
}

func TestDocumentTypeCache_ReturnsCopies(t *testing.T) {
	repo := new(mocks.MockDocumentTypeRepository)
	repo.On("FindByCode", mock.Anything, "c").Return(&model.DocumentType{Code: "c", Name: "A"}, nil).Once()

	c := NewDocumentTypeCache(repo, time.Minute)
	first, _ := c.FindByCode(context.Background(), "c")
	first.Name = "mutated"

	second, _ := c.FindByCode(context.Background(), "c")
	assert.Equal(t, "A", second.Name)
}
