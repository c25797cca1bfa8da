package repositories

import (
	"context"

	"github.com/ghuser/lostfound/services/item/domain/models"
)

// ItemRepository is the persistence interface for the Item aggregate.
// The domain layer owns this interface; infrastructure implements it.
//
// Items are addressed externally by id alone; implementations recover the
// item type needed for the physical key.
type ItemRepository interface {
	// Create validates the draft, assigns generated fields and stores the item.
	// It never overwrites an existing record.
	Create(ctx context.Context, draft models.Draft) (*models.Item, error)

	FindByID(ctx context.Context, id string) (*models.Item, error)

	// Update applies a partial field merge in one atomic write and returns the
	// post-update item. Derived index keys and updated_at are recomputed.
	Update(ctx context.Context, id string, updates models.FieldUpdates) (*models.Item, error)

	Delete(ctx context.Context, id string) error

	// ScanAll returns every item, following pagination to exhaustion.
	ScanAll(ctx context.Context) ([]*models.Item, error)

	// QueryByStatus returns every item with the given status via the status index.
	// Index failures are reported wrapped in domain.ErrIndexUnavailable.
	QueryByStatus(ctx context.Context, status models.Status) ([]*models.Item, error)
}

// BlobStore stores item images and returns a public locator for them.
type BlobStore interface {
	// Put stores data under a new key beneath pathHint and returns its URL. Two
	// calls never share an object, even for identical data.
	Put(ctx context.Context, data []byte, contentType, pathHint string) (string, error)

	// Delete removes the blob addressed by url.
	Delete(ctx context.Context, url string) error
}
