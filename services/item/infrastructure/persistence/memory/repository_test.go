package memory

import (
	"context"
	"errors"
	"reflect"
	"testing"

	itemdomain "github.com/ghuser/lostfound/services/item/domain"
	"github.com/ghuser/lostfound/services/item/domain/models"
)

func foundDraft() models.Draft {
	return models.Draft{
		Type:     models.ItemTypeFound,
		Category: "wallet",
		Location: "Library",
		Reporter: models.Reporter{Name: "Somchai", Contact: "0812345678"},
	}
}

func TestItemRepository_Lifecycle(t *testing.T) {
	repo := NewItemRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, foundDraft())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	a, _ := repo.FindByID(ctx, created.ID)
	b, _ := repo.FindByID(ctx, created.ID)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("repeated reads differ")
	}

	a.Category = "mutated"
	if again, _ := repo.FindByID(ctx, created.ID); again.Category != "wallet" {
		t.Fatal("returned items must not alias stored state")
	}

	updated, err := repo.Update(ctx, created.ID, models.FieldUpdates{models.AttrStatus: "AWAITING_CLAIM"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.StatusIndexKey() != "STATUS#AWAITING_CLAIM" {
		t.Fatalf("index key: got %q", updated.StatusIndexKey())
	}

	byStatus, _ := repo.QueryByStatus(ctx, models.StatusAwaitingClaim)
	if len(byStatus) != 1 {
		t.Fatalf("expected 1 item by status, got %d", len(byStatus))
	}

	if err := repo.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.FindByID(ctx, created.ID); !errors.Is(err, itemdomain.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}

func TestItemRepository_Errors(t *testing.T) {
	repo := NewItemRepository()
	ctx := context.Background()
	created, _ := repo.Create(ctx, foundDraft())

	if _, err := repo.Create(ctx, models.Draft{Type: models.ItemTypeFound}); !errors.Is(err, itemdomain.ErrValidation) {
		t.Errorf("Create invalid draft: got %v", err)
	}
	if _, err := repo.Update(ctx, created.ID, nil); !errors.Is(err, itemdomain.ErrValidation) {
		t.Errorf("Update empty: got %v", err)
	}
	if _, err := repo.Update(ctx, "nope", models.FieldUpdates{models.AttrBrand: "x"}); !errors.Is(err, itemdomain.ErrItemNotFound) {
		t.Errorf("Update missing: got %v", err)
	}
	if err := repo.Delete(ctx, "nope"); !errors.Is(err, itemdomain.ErrItemNotFound) {
		t.Errorf("Delete missing: got %v", err)
	}

	all, _ := repo.ScanAll(ctx)
	if len(all) != 1 || !all[0].UpdatedAt.Equal(created.UpdatedAt) {
		t.Error("failed operations must leave the store unchanged")
	}
}
