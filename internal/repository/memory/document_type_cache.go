package memory

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"docfill/internal/model"
	"docfill/internal/repository"
)

const listKey = "\x00list"

// DocumentTypeCache is a read-through cache in front of a DocumentTypeRepository.
// Document types change only on template upload, which invalidates the affected entries.
type DocumentTypeCache struct {
	next  repository.DocumentTypeRepository
	cache *cache.Cache
}

// NewDocumentTypeCache caches lookups on next for ttl.
func NewDocumentTypeCache(next repository.DocumentTypeRepository, ttl time.Duration) *DocumentTypeCache {
	return &DocumentTypeCache{
		next:  next,
		cache: cache.New(ttl, 2*ttl),
	}
}

var _ repository.DocumentTypeRepository = (*DocumentTypeCache)(nil)

func (c *DocumentTypeCache) List(ctx context.Context) ([]model.DocumentType, error) {
	if x, found := c.cache.Get(listKey); found {
		return append([]model.DocumentType(nil), x.([]model.DocumentType)...), nil
	}
	items, err := c.next.List(ctx)
	if err != nil {
		return nil, err
	}
	c.cache.Set(listKey, append([]model.DocumentType(nil), items...), cache.DefaultExpiration)
	return items, nil
}

func (c *DocumentTypeCache) FindByCode(ctx context.Context, code string) (*model.DocumentType, error) {
	if x, found := c.cache.Get(code); found {
		dt := x.(model.DocumentType)
		return &dt, nil
	}
	dt, err := c.next.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	c.cache.Set(code, *dt, cache.DefaultExpiration)
	return dt, nil
}

func (c *DocumentTypeCache) SetTemplateKey(ctx context.Context, code, key string) error {
	if err := c.next.SetTemplateKey(ctx, code, key); err != nil {
		return err
	}
	c.cache.Delete(code)
	c.cache.Delete(listKey)
	return nil
}
