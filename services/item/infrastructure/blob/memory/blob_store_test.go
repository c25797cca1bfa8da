package memory

import (
	"context"
	"errors"
	"strings"
	"testing"

	itemdomain "github.com/ghuser/lostfound/services/item/domain"
)

func TestBlobStore_PutDelete(t *testing.T) {
	store := NewBlobStore()
	ctx := context.Background()

	url, err := store.Put(ctx, []byte("img"), "image/jpeg", "lost-reports/2024-01-02")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !strings.HasPrefix(url, "memory://lost-reports/2024-01-02/") || !strings.HasSuffix(url, ".jpeg") {
		t.Fatalf("unexpected url %q", url)
	}
	if store.Len() != 1 {
		t.Fatalf("expected 1 object, got %d", store.Len())
	}

	if err := store.Delete(ctx, url); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Delete(ctx, url); !errors.Is(err, itemdomain.ErrBlobStore) {
		t.Fatalf("expected ErrBlobStore on second delete, got %v", err)
	}
	if err := store.Delete(ctx, "https://elsewhere/x.jpg"); !errors.Is(err, itemdomain.ErrBlobStore) {
		t.Fatalf("expected ErrBlobStore for foreign url, got %v", err)
	}
}

func TestBlobStore_IdenticalUploadsAreIndependent(t *testing.T) {
	store := NewBlobStore()
	ctx := context.Background()

	a, err := store.Put(ctx, []byte("img"), "image/jpeg", "found-items/wallet/2024-01-02")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	b, err := store.Put(ctx, []byte("img"), "image/jpeg", "found-items/wallet/2024-01-02")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if a == b {
		t.Fatalf("identical uploads share url %q", a)
	}
	if err := store.Delete(ctx, a); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if store.Len() != 1 {
		t.Fatalf("expected 1 object left, got %d", store.Len())
	}
	if err := store.Delete(ctx, b); err != nil {
		t.Errorf("second upload was lost: %v", err)
	}
}
