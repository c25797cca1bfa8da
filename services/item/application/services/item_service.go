package services

import (
	"context"
	"fmt"

	"github.com/ghuser/lostfound/pkg/logger"
	"github.com/ghuser/lostfound/services/item/domain/models"
	"github.com/ghuser/lostfound/services/item/domain/repositories"
)

// ItemService serves point lookups. Reads are served from Redis cache when available.
type ItemService struct {
	repo  repositories.ItemRepository
	cache *itemCache
}

// NewItemService returns an ItemService wired with the given repository and
// optional cache.
func NewItemService(repo repositories.ItemRepository, cache ItemCache, log logger.Logger) *ItemService {
	return &ItemService{repo: repo, cache: &itemCache{cache: cache, log: log}}
}

// GetByID retrieves an Item using a read-through cache pattern:
//  1. Check Redis cache first.
//  2. On cache miss (or cache error), query the item store.
//  3. Warm the cache with the store result. The cache refuses the write when
//     a mutation or delete has landed there since the store read.
func (s *ItemService) GetByID(ctx context.Context, id string) (*models.Item, error) {
	if item, ok := s.cache.get(ctx, id); ok {
		return item, nil
	}

	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}

	s.cache.set(ctx, item)
	return item, nil
}

// Warm loads id from the store into the cache. Used by the worker on item events.
func (s *ItemService) Warm(ctx context.Context, id string) error {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("warm item cache: %w", err)
	}
	s.cache.set(ctx, item)
	return nil
}

// Forget tombstones id in the cache after the item was deleted.
func (s *ItemService) Forget(ctx context.Context, id string) {
	s.cache.bury(ctx, id)
}
