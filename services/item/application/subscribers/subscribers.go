// Package subscribers maintains the Redis item read model from item events.
// Handlers are idempotent; the EventBus retries a failing handler before
// giving up on the message.
package subscribers

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	bus "github.com/ghuser/lostfound/pkg/events"
	"github.com/ghuser/lostfound/pkg/logger"
	appsvcs "github.com/ghuser/lostfound/services/item/application/services"
	itemdomain "github.com/ghuser/lostfound/services/item/domain"
	"github.com/ghuser/lostfound/services/item/domain/events"
)

// Subscriber is satisfied by *events.EventBus.
type Subscriber interface {
	Subscribe(ctx context.Context, topic string, handler func(context.Context, *message.Message) error) (<-chan error, error)
}

// Topics lists the topics Register subscribes to.
var Topics = []string{
	events.TopicItemCreated,
	events.TopicItemStatusChanged,
	events.TopicItemDeleted,
}

// Register subscribes the cache maintenance handlers and drains their error
// channels into the log until ctx is done.
func Register(ctx context.Context, sub Subscriber, items *appsvcs.ItemService, log logger.Logger) error {
	handlers := map[string]func(context.Context, *message.Message) error{
		events.TopicItemCreated:       HandleItemCreated(items, log),
		events.TopicItemStatusChanged: HandleItemStatusChanged(items, log),
		events.TopicItemDeleted:       HandleItemDeleted(items, log),
	}

	for _, topic := range Topics {
		errCh, err := sub.Subscribe(ctx, topic, handlers[topic])
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", topic, err)
		}
		go func(topic string) {
			for err := range errCh {
				log.ErrorContext(ctx, "subscriber error", "topic", topic, "error", err)
			}
		}(topic)
	}

	log.Info("event subscribers registered", "topics", Topics)
	return nil
}

// HandleItemCreated warms the cache with the new item.
func HandleItemCreated(items *appsvcs.ItemService, log logger.Logger) func(context.Context, *message.Message) error {
	return func(ctx context.Context, msg *message.Message) error {
		var evt events.ItemCreatedEvent
		if err := bus.Decode(msg, &evt, events.SchemaVersion); err != nil {
			log.ErrorContext(ctx, "dropping undecodable item.created", "message_uuid", msg.UUID, "error", err)
			return nil
		}
		return warm(ctx, items, log, evt.ItemID)
	}
}

// HandleItemStatusChanged refreshes the cached item after a status change.
func HandleItemStatusChanged(items *appsvcs.ItemService, log logger.Logger) func(context.Context, *message.Message) error {
	return func(ctx context.Context, msg *message.Message) error {
		var evt events.ItemStatusChangedEvent
		if err := bus.Decode(msg, &evt, events.SchemaVersion); err != nil {
			log.ErrorContext(ctx, "dropping undecodable item.status_changed", "message_uuid", msg.UUID, "error", err)
			return nil
		}
		return warm(ctx, items, log, evt.ItemID)
	}
}

// HandleItemDeleted tombstones the item in the cache.
func HandleItemDeleted(items *appsvcs.ItemService, log logger.Logger) func(context.Context, *message.Message) error {
	return func(ctx context.Context, msg *message.Message) error {
		var evt events.ItemDeletedEvent
		if err := bus.Decode(msg, &evt, events.SchemaVersion); err != nil {
			log.ErrorContext(ctx, "dropping undecodable item.deleted", "message_uuid", msg.UUID, "error", err)
			return nil
		}
		items.Forget(ctx, evt.ItemID)
		if evt.OrphanedImage {
			log.WarnContext(ctx, "item deleted with orphaned image", "item_id", evt.ItemID, "image_url", evt.ImageURL)
		}
		return nil
	}
}

// warm reloads id into the cache. An item deleted before the event arrived
// is tombstoned instead.
func warm(ctx context.Context, items *appsvcs.ItemService, log logger.Logger, id string) error {
	err := items.Warm(ctx, id)
	if errors.Is(err, itemdomain.ErrItemNotFound) {
		items.Forget(ctx, id)
		return nil
	}
	if err != nil {
		return err
	}
	log.DebugContext(ctx, "cache warmed", "item_id", id)
	return nil
}
