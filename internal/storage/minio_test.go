package storage

import (
	"errors"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"

	"docfill/internal/config"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "templates/nadannya_poslug.docx", TemplateKey("nadannya_poslug"))
	assert.Equal(t, "artifacts/s1/a1.docx", ArtifactKey("s1", "a1"))
	assert.Equal(t, "artifacts/s1/a1.signed.pdf", SignedKey("s1", "a1", ".pdf"))
	assert.Equal(t, "artifacts/s1/a1.signed.docx", SignedKey("s1", "a1", ""))
}

func TestAttachment(t *testing.T) {
	assert.Equal(t, `attachment; filename="a1.docx"`, attachment(ArtifactKey("s1", "a1")))
	assert.Equal(t, `attachment; filename="a1.signed.pdf"`, attachment(SignedKey("s1", "a1", ".pdf")))
}

func TestMapError(t *testing.T) {
	assert.NoError(t, mapError("k", nil))

	err := mapError("templates/x.docx", minio.ErrorResponse{Code: "NoSuchKey", Message: "missing"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "templates/x.docx")

	other := errors.New("connection reset")
	assert.Equal(t, other, mapError("k", other))

	denied := minio.ErrorResponse{Code: "AccessDenied"}
	assert.NotErrorIs(t, mapError("k", denied), ErrNotFound)
}

func TestNewMinIO_RequiresConfig(t *testing.T) {
	for name, cfg := range map[string]config.MinIOConfig{
		"endpoint":    {AccessKey: "a", SecretKey: "s", Bucket: "b"},
		"credentials": {Endpoint: "localhost:9000", Bucket: "b"},
		"bucket":      {Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "s"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := NewMinIO(cfg)
			assert.ErrorContains(t, err, name)
		})
	}
}
