package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"

	pkgcache "github.com/ghuser/lostfound/pkg/cache"
	"github.com/ghuser/lostfound/pkg/config"
	"github.com/ghuser/lostfound/pkg/imaging"
	"github.com/ghuser/lostfound/pkg/logger"
	itemdomain "github.com/ghuser/lostfound/services/item/domain"
	"github.com/ghuser/lostfound/services/item/domain/models"
	blobmemory "github.com/ghuser/lostfound/services/item/infrastructure/blob/memory"
	"github.com/ghuser/lostfound/services/item/infrastructure/persistence/memory"
)

func nopLogger() logger.Logger {
	return logger.New(&config.Config{LogLevel: "error"})
}

// pngDataURL returns a small PNG encoded as a base64 data URL.
func pngDataURL(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 40, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

// failingBlobs rejects every call.
type failingBlobs struct{}

func (failingBlobs) Put(context.Context, []byte, string, string) (string, error) {
	return "", errors.New("bucket unreachable")
}

func (failingBlobs) Delete(context.Context, string) error {
	return errors.New("bucket unreachable")
}

// indexDownRepo is a memory repository whose status index always fails.
type indexDownRepo struct {
	*memory.ItemRepository
	queries int
}

func (r *indexDownRepo) QueryByStatus(context.Context, models.Status) ([]*models.Item, error) {
	r.queries++
	return nil, itemdomain.ErrIndexUnavailable
}

// countingRepo counts access paths on top of a memory repository.
type countingRepo struct {
	*memory.ItemRepository
	scans, queries int
}

func (r *countingRepo) ScanAll(ctx context.Context) ([]*models.Item, error) {
	r.scans++
	return r.ItemRepository.ScanAll(ctx)
}

func (r *countingRepo) QueryByStatus(ctx context.Context, s models.Status) ([]*models.Item, error) {
	r.queries++
	return r.ItemRepository.QueryByStatus(ctx, s)
}

type published struct {
	topic   string
	payload []byte
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []published
	err    error
}

func (p *recordingPublisher) PublishJSON(_ context.Context, topic, _ string, _ int, payload any) error {
	if p.err != nil {
		return p.err
	}
	data, _ := json.Marshal(payload)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{topic: topic, payload: data})
	return nil
}

func (p *recordingPublisher) topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.topic
	}
	return out
}

// mapCache is an in-memory ItemCache with the same freshness and tombstone
// rules as the Redis cache.
type mapCache struct {
	mu      sync.Mutex
	entries map[string]pkgcache.CachedItem
	dead    map[string]bool
	getErr  error
	// beforeSet, when set, runs before each write is applied.
	beforeSet func(item *pkgcache.CachedItem)
}

func newMapCache() *mapCache {
	return &mapCache{
		entries: map[string]pkgcache.CachedItem{},
		dead:    map[string]bool{},
	}
}

func (c *mapCache) Get(_ context.Context, id string) (*pkgcache.CachedItem, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[id]
	if !ok {
		return nil, pkgcache.ErrMiss
	}
	return &e, nil
}

func (c *mapCache) Set(_ context.Context, item *pkgcache.CachedItem) error {
	if c.beforeSet != nil {
		c.beforeSet(item)
	}
	c.mu.Lock()
	current, exists := c.entries[item.ID]
	fresher := !exists || current.UpdatedAt <= item.UpdatedAt
	if !c.dead[item.ID] && fresher {
		c.entries[item.ID] = *item
	}
	c.mu.Unlock()
	return nil
}

func (c *mapCache) Delete(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
	return nil
}

func (c *mapCache) Tombstone(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
	c.dead[id] = true
	return nil
}

func (c *mapCache) status(id string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[id].Status
}

func (c *mapCache) has(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[id]
	return ok
}

type fixture struct {
	repo  *memory.ItemRepository
	blobs *blobmemory.BlobStore
	pub   *recordingPublisher
	cache *mapCache
	svcs  *Services
}

func newFixture() *fixture {
	f := &fixture{
		repo:  memory.NewItemRepository(),
		blobs: blobmemory.NewBlobStore(),
		pub:   &recordingPublisher{},
		cache: newMapCache(),
	}
	f.svcs = NewWithDeps(Deps{
		Repo:      f.repo,
		Blobs:     f.blobs,
		Cache:     f.cache,
		Publisher: f.pub,
		Logger:    nopLogger(),
		Images:    imaging.Options{MaxBytes: 1 << 20, MaxDimension: 64},
	})
	return f
}

func foundDraft(category, location string) models.Draft {
	return models.Draft{
		Type:     models.ItemTypeFound,
		Category: category,
		Location: location,
		Date:     "2024-01-02",
		Reporter: models.Reporter{Name: "Somchai", Contact: "0812345678"},
	}
}

func lostDraft(category, location, date string) models.Draft {
	return models.Draft{
		Type:     models.ItemTypeLost,
		Category: category,
		Location: location,
		Date:     date,
		Reporter: models.Reporter{Name: "Malee", Contact: "malee@example.edu"},
	}
}
