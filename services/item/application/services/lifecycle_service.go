package services

import (
	"context"
	"fmt"

	"github.com/ghuser/lostfound/pkg/logger"
	"github.com/ghuser/lostfound/pkg/telemetry"
	itemdomain "github.com/ghuser/lostfound/services/item/domain"
	"github.com/ghuser/lostfound/services/item/domain/models"
	"github.com/ghuser/lostfound/services/item/domain/repositories"
	domainsvcs "github.com/ghuser/lostfound/services/item/domain/services"
)

// DeleteOutcome reports what an administrative delete did. The record is
// always removed when Delete returns nil; BlobError is set when the image
// could not be removed and is left orphaned in the blob store.
type DeleteOutcome struct {
	ItemID    string
	ImageURL  string
	BlobError error
}

// OrphanedImage reports whether the delete left the image behind.
func (o DeleteOutcome) OrphanedImage() bool {
	return o.BlobError != nil
}

// LifecycleService carries administrative mutations of existing items.
// Status changes are permissive: any status in the item type's vocabulary
// may be set from any other.
type LifecycleService struct {
	repo    repositories.ItemRepository
	blobs   repositories.BlobStore
	cache   *itemCache
	events  *eventPublisher
	metrics *telemetry.ItemMetrics
	log     logger.Logger
}

// NewLifecycleService returns a LifecycleService. cache and pub may be nil.
func NewLifecycleService(
	repo repositories.ItemRepository,
	blobs repositories.BlobStore,
	cache ItemCache,
	pub EventPublisher,
	metrics *telemetry.ItemMetrics,
	log logger.Logger,
) *LifecycleService {
	return &LifecycleService{
		repo:    repo,
		blobs:   blobs,
		cache:   &itemCache{cache: cache, log: log},
		events:  &eventPublisher{pub: pub, log: log},
		metrics: metrics,
		log:     log,
	}
}

// ChangeStatus sets the item's status in one atomic write together with
// updated_at and the status index key.
func (s *LifecycleService) ChangeStatus(ctx context.Context, id, status string) (*models.Item, error) {
	target, err := models.ParseStatus(status)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", itemdomain.ErrValidation, err)
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("change status: %w", err)
	}
	if !target.AllowedFor(current.Type) {
		return nil, fmt.Errorf("%w: status %s is not valid for %s items", itemdomain.ErrValidation, target, current.Type)
	}

	item, err := s.repo.Update(ctx, id, models.FieldUpdates{models.AttrStatus: target.String()})
	if err != nil {
		return nil, fmt.Errorf("change status: %w", err)
	}
	s.cache.refresh(ctx, item)

	s.log.InfoContext(ctx, "item status changed", "item_id", id, "from", current.Status, "to", item.Status)
	s.events.statusChanged(ctx, id, current.Status, item.Status)
	return item, nil
}

// UpdateFields applies a partial merge of descriptive fields.
// A status carried in updates is treated exactly like ChangeStatus.
func (s *LifecycleService) UpdateFields(ctx context.Context, id string, updates models.FieldUpdates) (*models.Item, error) {
	if len(updates) == 0 {
		return nil, fmt.Errorf("%w: %w", itemdomain.ErrValidation, models.ErrEmptyUpdate)
	}
	for _, name := range updates.Names() {
		if name == models.AttrImageURL || name == models.AttrStatus {
			continue
		}
		if err := domainsvcs.ValidateText(name, updates[name], name == models.AttrDetails); err != nil {
			return nil, fmt.Errorf("%w: %w", itemdomain.ErrValidation, err)
		}
	}

	var before models.Status
	if _, ok := updates[models.AttrStatus]; ok {
		current, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("update item: %w", err)
		}
		before = current.Status
	}

	item, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	s.cache.refresh(ctx, item)

	s.log.InfoContext(ctx, "item updated", "item_id", id, "fields", updates.Names())
	if before != "" && before != item.Status {
		s.events.statusChanged(ctx, id, before, item.Status)
	}
	return item, nil
}

// Delete removes an item in two explicit steps:
//  1. best-effort removal of the image blob; a failure is logged and
//     recorded in DeleteOutcome.BlobError,
//  2. removal of the record, which proceeds regardless of step 1.
func (s *LifecycleService) Delete(ctx context.Context, id string) (DeleteOutcome, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return DeleteOutcome{}, fmt.Errorf("delete item: %w", err)
	}
	outcome := DeleteOutcome{ItemID: id, ImageURL: item.ImageURL}

	if item.ImageURL != "" {
		if err := s.blobs.Delete(ctx, item.ImageURL); err != nil {
			outcome.BlobError = err
			s.log.WarnContext(ctx, "image delete failed, continuing with record delete",
				"item_id", id, "image_url", item.ImageURL, "error", err)
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return outcome, fmt.Errorf("delete item: %w", err)
	}
	s.cache.bury(ctx, id)

	if outcome.OrphanedImage() {
		s.metrics.BlobOrphaned(ctx)
	}
	s.log.InfoContext(ctx, "item deleted", "item_id", id, "orphaned_image", outcome.OrphanedImage())
	s.events.itemDeleted(ctx, id, item.ImageURL, outcome.OrphanedImage())
	return outcome, nil
}
