package events

import (
	"time"

	"github.com/google/uuid"
)

// SchemaVersion is stamped on every item event. Consumers drop events with a
// higher version.
const SchemaVersion = 1

// Watermill topics published by the item bounded context.
const (
	TopicItemCreated       = "item.created"
	TopicItemStatusChanged = "item.status_changed"
	TopicItemDeleted       = "item.deleted"
)

// ItemCreatedEvent is published after a new Item is persisted.
// Consumers subscribe via EventBus.Subscribe(ctx, events.TopicItemCreated).
type ItemCreatedEvent struct {
	EventID    uuid.UUID `json:"event_id"` // Unique publish-time identifier for deduplication
	Version    int       `json:"version"`  // Schema version; increment on breaking changes
	ItemID     string    `json:"item_id"`
	ItemType   string    `json:"item_type"`
	CaseID     string    `json:"case_id"`
	Category   string    `json:"category"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ItemStatusChangedEvent is published after an item's status is updated.
type ItemStatusChangedEvent struct {
	EventID    uuid.UUID `json:"event_id"`
	Version    int       `json:"version"`
	ItemID     string    `json:"item_id"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ItemDeletedEvent is published after an item record is removed.
// OrphanedImage is set when the image blob could not be deleted.
type ItemDeletedEvent struct {
	EventID       uuid.UUID `json:"event_id"`
	Version       int       `json:"version"`
	ItemID        string    `json:"item_id"`
	ImageURL      string    `json:"image_url,omitempty"`
	OrphanedImage bool      `json:"orphaned_image"`
	OccurredAt    time.Time `json:"occurred_at"`
}
