package services

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	pkgcache "github.com/ghuser/lostfound/pkg/cache"
	itemdomain "github.com/ghuser/lostfound/services/item/domain"
	"github.com/ghuser/lostfound/services/item/domain/models"
)

func TestGetByID_ReadThrough(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	item, _ := f.svcs.Intake.Create(ctx, foundDraft("wallet", "Library"), "")

	first, err := f.svcs.Item.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !f.cache.has(item.ID) {
		t.Fatal("cache was not warmed")
	}

	second, err := f.svcs.Item.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID (cached): %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("cached item differs:\nstore %+v\ncache %+v", first, second)
	}
}

func TestGetByID_SlowWarmDoesNotOverwriteMutation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	item, err := f.svcs.Intake.Create(ctx, foundDraft("wallet", "Library"), "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	reached := make(chan struct{})
	release := make(chan struct{})
	f.cache.beforeSet = func(c *pkgcache.CachedItem) {
		if c.Status == models.StatusReported.String() {
			close(reached)
			<-release
		}
	}

	read := make(chan error, 1)
	go func() {
		_, err := f.svcs.Item.GetByID(ctx, item.ID)
		read <- err
	}()

	select {
	case <-reached:
	case <-time.After(2 * time.Second):
		t.Fatal("read-through never reached the cache")
	}
	if _, err := f.svcs.Lifecycle.ChangeStatus(ctx, item.ID, "RETURNED"); err != nil {
		t.Fatalf("ChangeStatus: %v", err)
	}
	close(release)
	if err := <-read; err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	f.cache.beforeSet = nil

	got, err := f.svcs.Item.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != models.StatusReturned {
		t.Errorf("status = %s, want RETURNED", got.Status)
	}
}

func TestGetByID_SlowWarmDoesNotResurrectDeletedItem(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	item, err := f.svcs.Intake.Create(ctx, foundDraft("keys", "Gym"), "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	reached := make(chan struct{})
	release := make(chan struct{})
	f.cache.beforeSet = func(*pkgcache.CachedItem) {
		close(reached)
		<-release
	}

	read := make(chan error, 1)
	go func() {
		_, err := f.svcs.Item.GetByID(ctx, item.ID)
		read <- err
	}()

	<-reached
	if _, err := f.svcs.Lifecycle.Delete(ctx, item.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	close(release)
	if err := <-read; err != nil {
		t.Fatalf("GetByID: %v", err)
	}

	if f.cache.has(item.ID) {
		t.Fatal("deleted item was re-cached")
	}
	if _, err := f.svcs.Item.GetByID(ctx, item.ID); !errors.Is(err, itemdomain.ErrItemNotFound) {
		t.Errorf("error = %v, want ErrItemNotFound", err)
	}
}

func TestGetByID_CacheErrorFallsThrough(t *testing.T) {
	f := newFixture()
	f.cache.getErr = errors.New("redis down")
	ctx := context.Background()
	item, _ := f.svcs.Intake.Create(ctx, foundDraft("wallet", "Library"), "")

	got, err := f.svcs.Item.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.ID != item.ID {
		t.Errorf("id = %s, want %s", got.ID, item.ID)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	f := newFixture()
	_, err := f.svcs.Item.GetByID(context.Background(), "missing")
	if !errors.Is(err, itemdomain.ErrItemNotFound) {
		t.Fatalf("error = %v, want ErrItemNotFound", err)
	}
}

func TestGetByID_Idempotent(t *testing.T) {
	base := newFixture()
	f := NewWithDeps(Deps{Repo: base.repo, Blobs: base.blobs, Logger: nopLogger()})
	ctx := context.Background()
	item, _ := f.Intake.Create(ctx, foundDraft("wallet", "Library"), "")

	a, err := f.Item.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	b, err := f.Item.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Errorf("lookups differ: %+v vs %+v", a, b)
	}
}

func TestCachedRoundTrip(t *testing.T) {
	item, err := models.NewItem(foundDraft("wallet", "Library"))
	if err != nil {
		t.Fatalf("NewItem: %v", err)
	}
	item.Extra = map[string]any{"itemIdNumber": int64(42), "weight": 1.5, "note": "legacy"}

	cached, err := toCached(item)
	if err != nil {
		t.Fatalf("toCached: %v", err)
	}
	got, err := fromCached(cached)
	if err != nil {
		t.Fatalf("fromCached: %v", err)
	}
	if !reflect.DeepEqual(item, got) {
		t.Errorf("round trip differs:\nwant %+v\ngot  %+v", item, got)
	}
}

func TestFromCached_RejectsCorruptEntries(t *testing.T) {
	item, _ := models.NewItem(foundDraft("wallet", "Library"))
	good, _ := toCached(item)

	tests := []struct {
		name   string
		mutate func(c *pkgcache.CachedItem)
	}{
		{"bad type", func(c *pkgcache.CachedItem) { c.Type = "BOTH" }},
		{"bad status", func(c *pkgcache.CachedItem) { c.Status = "GONE" }},
		{"bad timestamp", func(c *pkgcache.CachedItem) { c.CreatedAt = "yesterday" }},
		{"bad extra", func(c *pkgcache.CachedItem) { c.Extra = "{" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := *good
			tt.mutate(&c)
			if _, err := fromCached(&c); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
