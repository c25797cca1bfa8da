package models

import (
	"strings"
	"testing"
	"time"
)

func foundDraft() Draft {
	return Draft{
		Type:     ItemTypeFound,
		Category: "wallet",
		Location: "Library",
		Reporter: Reporter{Name: "Somchai", Contact: "0812345678"},
	}
}

func TestNewItem(t *testing.T) {
	t.Run("returns item with non-empty ID", func(t *testing.T) {
		item, err := NewItem(foundDraft())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if item.ID == "" {
			t.Fatal("expected non-empty ID")
		}
	})

	t.Run("derives case id from the id suffix", func(t *testing.T) {
		item, _ := NewItem(foundDraft())
		want := strings.ToUpper(item.ID[len(item.ID)-6:])
		if item.CaseID != want {
			t.Fatalf("expected case id %q, got %q", want, item.CaseID)
		}
	})

	t.Run("initial status is REPORTED", func(t *testing.T) {
		item, _ := NewItem(Draft{Type: ItemTypeLost, Category: "phone"})
		if item.Status != StatusReported {
			t.Fatalf("expected %s, got %s", StatusReported, item.Status)
		}
	})

	t.Run("sets CreatedAt equal to UpdatedAt approximately now", func(t *testing.T) {
		before := time.Now().UTC().Add(-time.Millisecond)
		item, _ := NewItem(foundDraft())
		after := time.Now().UTC().Add(time.Millisecond)
		if !item.CreatedAt.Equal(item.UpdatedAt) {
			t.Fatalf("CreatedAt %v != UpdatedAt %v", item.CreatedAt, item.UpdatedAt)
		}
		if item.CreatedAt.Before(before) || item.CreatedAt.After(after) {
			t.Fatalf("CreatedAt %v not between %v and %v", item.CreatedAt, before, after)
		}
	})

	t.Run("rejects unknown item type", func(t *testing.T) {
		if _, err := NewItem(Draft{Type: "MISPLACED"}); err == nil {
			t.Fatal("expected error for invalid type")
		}
	})

	t.Run("generates unique IDs on each call", func(t *testing.T) {
		item1, _ := NewItem(foundDraft())
		item2, _ := NewItem(foundDraft())
		if item1.ID == item2.ID {
			t.Fatal("expected unique IDs, got identical")
		}
	})
}

func TestIndexKeys(t *testing.T) {
	item, _ := NewItem(foundDraft())
	if got := item.StatusIndexKey(); got != "STATUS#REPORTED" {
		t.Errorf("status key: got %q", got)
	}
	if got := item.CategoryIndexKey(); got != "CATEGORY#wallet" {
		t.Errorf("category key: got %q", got)
	}

	item.Apply(FieldUpdates{AttrStatus: string(StatusReturned)}, Now())
	if got := item.StatusIndexKey(); got != "STATUS#RETURNED" {
		t.Errorf("status key after apply: got %q", got)
	}
}

func TestCaseIDFor_ShortID(t *testing.T) {
	if got := CaseIDFor("ab1"); got != "AB1" {
		t.Fatalf("expected AB1, got %q", got)
	}
}

func TestFormatTimestamp_FixedWidth(t *testing.T) {
	a := FormatTimestamp(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	b := FormatTimestamp(time.Date(2024, 1, 2, 3, 4, 5, 120000000, time.UTC))
	if len(a) != len(b) {
		t.Fatalf("expected equal widths, got %q and %q", a, b)
	}
	if a >= b {
		t.Fatalf("expected %q < %q", a, b)
	}
}

func TestClone_Independent(t *testing.T) {
	item, _ := NewItem(foundDraft())
	item.Extra = map[string]any{"reward": int64(100)}
	c := item.Clone()
	c.Category = "keys"
	c.Extra["reward"] = int64(5)
	if item.Category != "wallet" || item.Extra["reward"] != int64(100) {
		t.Fatal("clone mutated the original")
	}
}

func TestRequiredFields(t *testing.T) {
	lost := RequiredFields(ItemTypeLost)
	found := RequiredFields(ItemTypeFound)
	if !contains(lost, AttrDate) {
		t.Error("LOST must require date")
	}
	if contains(found, AttrDate) {
		t.Error("FOUND must not require date")
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
