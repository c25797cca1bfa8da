package subscribers

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	pkgcache "github.com/ghuser/lostfound/pkg/cache"
	"github.com/ghuser/lostfound/pkg/config"
	pkgevents "github.com/ghuser/lostfound/pkg/events"
	"github.com/ghuser/lostfound/pkg/logger"
	appsvcs "github.com/ghuser/lostfound/services/item/application/services"
	"github.com/ghuser/lostfound/services/item/domain/models"
	blobmemory "github.com/ghuser/lostfound/services/item/infrastructure/blob/memory"
	"github.com/ghuser/lostfound/services/item/infrastructure/persistence/memory"
)

func nopLogger() logger.Logger {
	return logger.New(&config.Config{LogLevel: "error"})
}

// fakeCache records the cached status of each item.
type fakeCache struct {
	mu      sync.Mutex
	entries map[string]string
	dead    map[string]bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]string{}, dead: map[string]bool{}}
}

func (c *fakeCache) Get(context.Context, string) (*pkgcache.CachedItem, error) {
	return nil, pkgcache.ErrMiss
}

func (c *fakeCache) Set(_ context.Context, item *pkgcache.CachedItem) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.dead[item.ID] {
		c.entries[item.ID] = item.Status
	}
	return nil
}

func (c *fakeCache) Tombstone(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
	c.dead[id] = true
	return nil
}

func (c *fakeCache) Delete(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
	return nil
}

func (c *fakeCache) status(id string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.entries[id]
	return s, ok
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestRegister_MaintainsCacheFromEvents(t *testing.T) {
	log := nopLogger()
	bus := pkgevents.NewInProcessEventBus(log)
	defer bus.Close() //nolint:errcheck

	cache := newFakeCache()
	repo := memory.NewItemRepository()
	// The read side never sees events; only the worker warms the cache.
	reader := appsvcs.NewItemService(repo, cache, log)
	writer := appsvcs.NewWithDeps(appsvcs.Deps{
		Repo:      repo,
		Blobs:     blobmemory.NewBlobStore(),
		Publisher: bus,
		Logger:    log,
	})

	ctx := context.Background()
	if err := Register(ctx, bus, reader, log); err != nil {
		t.Fatalf("Register: %v", err)
	}

	item, err := writer.Intake.Create(ctx, models.Draft{
		Type:     models.ItemTypeFound,
		Category: "wallet",
		Location: "Library",
		Reporter: models.Reporter{Name: "A", Contact: "B"},
	}, "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	waitFor(t, "created item cached", func() bool {
		s, ok := cache.status(item.ID)
		return ok && s == "REPORTED"
	})

	if _, err := writer.Lifecycle.ChangeStatus(ctx, item.ID, "RETURNED"); err != nil {
		t.Fatalf("ChangeStatus: %v", err)
	}
	waitFor(t, "status refreshed", func() bool {
		s, _ := cache.status(item.ID)
		return s == "RETURNED"
	})

	if _, err := writer.Lifecycle.Delete(ctx, item.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	waitFor(t, "deleted item tombstoned", func() bool {
		_, ok := cache.status(item.ID)
		return !ok
	})
}

func TestHandlers_Idempotent(t *testing.T) {
	log := nopLogger()
	cache := newFakeCache()
	repo := memory.NewItemRepository()
	items := appsvcs.NewItemService(repo, cache, log)
	ctx := context.Background()

	item, err := repo.Create(ctx, models.Draft{
		Type:     models.ItemTypeLost,
		Category: "phone",
		Location: "Gym",
		Date:     "2024-01-02",
		Reporter: models.Reporter{Name: "A", Contact: "B"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	created := message.NewMessage("1", []byte(`{"item_id":"`+item.ID+`"}`))
	handle := HandleItemCreated(items, log)
	for i := 0; i < 2; i++ {
		if err := handle(ctx, created); err != nil {
			t.Fatalf("delivery %d: %v", i+1, err)
		}
	}
	if _, ok := cache.status(item.ID); !ok {
		t.Fatal("item not cached")
	}

	deleted := message.NewMessage("2", []byte(`{"item_id":"`+item.ID+`","orphaned_image":true}`))
	for i := 0; i < 2; i++ {
		if err := HandleItemDeleted(items, log)(ctx, deleted); err != nil {
			t.Fatalf("delete delivery %d: %v", i+1, err)
		}
	}
	if _, ok := cache.status(item.ID); ok {
		t.Fatal("item still cached after delete event")
	}

	// A late created redelivery must not resurrect the deleted entry.
	if err := handle(ctx, created); err != nil {
		t.Fatalf("late delivery: %v", err)
	}
	if _, ok := cache.status(item.ID); ok {
		t.Fatal("late created event re-cached a deleted item")
	}
}

func TestHandlers_SkipBadPayloadsAndMissingItems(t *testing.T) {
	log := nopLogger()
	cache := newFakeCache()
	items := appsvcs.NewItemService(memory.NewItemRepository(), cache, log)
	ctx := context.Background()

	tests := []struct {
		name    string
		handler func(context.Context, *message.Message) error
		payload string
	}{
		{"created garbage", HandleItemCreated(items, log), `{`},
		{"status garbage", HandleItemStatusChanged(items, log), `not json`},
		{"deleted garbage", HandleItemDeleted(items, log), `[]`},
		{"created for missing item", HandleItemCreated(items, log), `{"item_id":"gone"}`},
		{"status for missing item", HandleItemStatusChanged(items, log), `{"item_id":"gone","to":"RETURNED"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.handler(ctx, message.NewMessage("x", []byte(tt.payload))); err != nil {
				t.Errorf("handler error = %v, want nil", err)
			}
		})
	}
}

func TestHandlers_SkipNewerSchemaVersions(t *testing.T) {
	log := nopLogger()
	cache := newFakeCache()
	repo := memory.NewItemRepository()
	items := appsvcs.NewItemService(repo, cache, log)
	ctx := context.Background()

	item, err := repo.Create(ctx, models.Draft{
		Type:     models.ItemTypeFound,
		Category: "umbrella",
		Location: "Library",
		Reporter: models.Reporter{Name: "Desk", Contact: "desk@campus"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	msg := message.NewMessage("3", []byte(`{"item_id":"`+item.ID+`"}`))
	msg.Metadata.Set(pkgevents.MetaEventVersion, "2")
	if err := HandleItemCreated(items, log)(ctx, msg); err != nil {
		t.Fatalf("handler error = %v, want nil", err)
	}
	if _, ok := cache.status(item.ID); ok {
		t.Error("event with a newer schema version must not warm the cache")
	}
}
