package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/lostfound/pkg/logger"
	"github.com/ghuser/lostfound/services/item/domain/events"
	"github.com/ghuser/lostfound/services/item/domain/models"
)

const eventVersion = events.SchemaVersion

// EventPublisher is satisfied by *events.EventBus.
type EventPublisher interface {
	PublishJSON(ctx context.Context, topic, eventID string, version int, payload any) error
}

// eventPublisher publishes item events after the store write succeeded.
// Publish failures are logged only; the write is already durable.
type eventPublisher struct {
	pub EventPublisher
	log logger.Logger
}

func (p *eventPublisher) itemCreated(ctx context.Context, item *models.Item) {
	p.publish(ctx, events.TopicItemCreated, item.ID, func(id uuid.UUID, at time.Time) any {
		return events.ItemCreatedEvent{
			EventID:    id,
			Version:    eventVersion,
			ItemID:     item.ID,
			ItemType:   item.Type.String(),
			CaseID:     item.CaseID,
			Category:   item.Category,
			OccurredAt: at,
		}
	})
}

func (p *eventPublisher) statusChanged(ctx context.Context, itemID string, from, to models.Status) {
	p.publish(ctx, events.TopicItemStatusChanged, itemID, func(id uuid.UUID, at time.Time) any {
		return events.ItemStatusChangedEvent{
			EventID:    id,
			Version:    eventVersion,
			ItemID:     itemID,
			From:       from.String(),
			To:         to.String(),
			OccurredAt: at,
		}
	})
}

func (p *eventPublisher) itemDeleted(ctx context.Context, itemID, imageURL string, orphaned bool) {
	p.publish(ctx, events.TopicItemDeleted, itemID, func(id uuid.UUID, at time.Time) any {
		return events.ItemDeletedEvent{
			EventID:       id,
			Version:       eventVersion,
			ItemID:        itemID,
			ImageURL:      imageURL,
			OrphanedImage: orphaned,
			OccurredAt:    at,
		}
	})
}

func (p *eventPublisher) publish(ctx context.Context, topic, itemID string, build func(uuid.UUID, time.Time) any) {
	if p == nil || p.pub == nil {
		return
	}
	id := uuid.New()
	if err := p.pub.PublishJSON(ctx, topic, id.String(), eventVersion, build(id, time.Now().UTC())); err != nil {
		p.log.ErrorContext(ctx, "failed to publish item event", "topic", topic, "item_id", itemID, "error", err)
	}
}
