package events_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/lostfound/services/item/domain/events"
)

func TestItemCreatedEvent_JSONFieldNames(t *testing.T) {
	evt := events.ItemCreatedEvent{
		EventID:    uuid.New(),
		Version:    1,
		ItemID:     "550e8400-e29b-41d4-a716-446655440000",
		ItemType:   "FOUND",
		CaseID:     "440000",
		Category:   "wallet",
		OccurredAt: time.Now().UTC(),
	}

	data, err := json.Marshal(evt)
	if err != nil {
		t.Fatalf("json.Marshal failed: %v", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal to map failed: %v", err)
	}

	for _, field := range []string{"event_id", "version", "item_id", "item_type", "case_id", "category", "occurred_at"} {
		if _, ok := raw[field]; !ok {
			t.Errorf("expected JSON field %q not found in: %s", field, data)
		}
	}
}

func TestItemDeletedEvent_OmitsEmptyImage(t *testing.T) {
	data, err := json.Marshal(events.ItemDeletedEvent{EventID: uuid.New(), Version: 1, ItemID: "x"})
	if err != nil {
		t.Fatalf("json.Marshal failed: %v", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal to map failed: %v", err)
	}
	if _, ok := raw["image_url"]; ok {
		t.Errorf("image_url should be omitted when empty: %s", data)
	}
	if v, ok := raw["orphaned_image"]; !ok || v != false {
		t.Errorf("orphaned_image should be present and false: %s", data)
	}
}

func TestTopics_Values(t *testing.T) {
	tests := map[string]string{
		events.TopicItemCreated:       "item.created",
		events.TopicItemStatusChanged: "item.status_changed",
		events.TopicItemDeleted:       "item.deleted",
	}
	for got, want := range tests {
		if got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	}
}
