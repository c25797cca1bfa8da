package handlers

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/ghuser/lostfound/services/item/domain/models"
)

func TestItemResponse_MergesExtra(t *testing.T) {
	created := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	item := &models.Item{
		ID:        "550e8400-e29b-41d4-a716-446655440000",
		Type:      models.ItemTypeFound,
		CaseID:    "440000",
		Category:  "wallet",
		Location:  "Library",
		Status:    models.StatusReported,
		CreatedAt: created,
		UpdatedAt: created,
		Extra: map[string]any{
			"itemIdNumber": int64(42),
			"weight":       1.5,
			"category":     "shadowed",
		},
	}

	data, err := json.Marshal(toItemResponse(item))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	tests := []struct {
		key  string
		want any
	}{
		{"item_id", item.ID},
		{"item_type", "FOUND"},
		{"category", "wallet"},
		{"itemIdNumber", float64(42)},
		{"weight", 1.5},
		{"created_at", "2024-01-15T10:30:00.000000Z"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got[tt.key] != tt.want {
				t.Errorf("%s = %v, want %v", tt.key, got[tt.key], tt.want)
			}
		})
	}
	if _, ok := got["brand"]; ok {
		t.Error("empty brand should be omitted")
	}
}

func TestItemResponse_NoExtra(t *testing.T) {
	item := &models.Item{ID: "a", Type: models.ItemTypeLost, Status: models.StatusReported}
	data, err := json.Marshal(toItemResponse(item))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["item_type"] != "LOST" {
		t.Errorf("item_type = %v", got["item_type"])
	}
	if _, ok := got["Extra"]; ok {
		t.Error("Extra must not be serialised as a field")
	}
}
