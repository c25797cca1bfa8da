// Package memory is an in-process item repository for local development and tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	itemdomain "github.com/ghuser/lostfound/services/item/domain"
	"github.com/ghuser/lostfound/services/item/domain/models"
	"github.com/ghuser/lostfound/services/item/domain/services"
)

// ItemRepository implements repositories.ItemRepository in memory. Items are
// copied on the way in and out so callers never share state with the store.
type ItemRepository struct {
	mu    sync.RWMutex
	items map[string]*models.Item
}

// NewItemRepository returns an empty ItemRepository.
func NewItemRepository() *ItemRepository {
	return &ItemRepository{items: make(map[string]*models.Item)}
}

func (r *ItemRepository) Create(_ context.Context, draft models.Draft) (*models.Item, error) {
	if err := services.ValidateDraft(draft); err != nil {
		return nil, fmt.Errorf("%w: %w", itemdomain.ErrValidation, err)
	}
	item, err := models.NewItem(draft)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", itemdomain.ErrValidation, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.items[item.ID]; exists {
		return nil, itemdomain.ErrItemAlreadyExists
	}
	r.items[item.ID] = item.Clone()
	return item, nil
}

func (r *ItemRepository) FindByID(_ context.Context, id string) (*models.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	if !ok {
		return nil, itemdomain.ErrItemNotFound
	}
	return item.Clone(), nil
}

func (r *ItemRepository) Update(_ context.Context, id string, updates models.FieldUpdates) (*models.Item, error) {
	if len(updates) == 0 {
		return nil, fmt.Errorf("%w: %w", itemdomain.ErrValidation, models.ErrEmptyUpdate)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.items[id]
	if !ok {
		return nil, itemdomain.ErrItemNotFound
	}
	fields, err := updates.Normalize(current.Type)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", itemdomain.ErrValidation, err)
	}

	next := current.Clone()
	next.Apply(fields, models.Now())
	r.items[id] = next
	return next.Clone(), nil
}

func (r *ItemRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return itemdomain.ErrItemNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *ItemRepository) ScanAll(_ context.Context) ([]*models.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*models.Item, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, item.Clone())
	}
	return out, nil
}

// QueryByStatus matches on the derived status key, mirroring the index lookup.
func (r *ItemRepository) QueryByStatus(_ context.Context, status models.Status) ([]*models.Item, error) {
	key := status.IndexKey()
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.Item
	for _, item := range r.items {
		if item.StatusIndexKey() == key {
			out = append(out, item.Clone())
		}
	}
	return out, nil
}
