package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	pkgcache "github.com/ghuser/lostfound/pkg/cache"
	"github.com/ghuser/lostfound/pkg/logger"
	"github.com/ghuser/lostfound/services/item/domain/models"
)

// ItemCache is satisfied by *cache.ItemCache.
type ItemCache interface {
	Get(ctx context.Context, itemID string) (*pkgcache.CachedItem, error)
	Set(ctx context.Context, item *pkgcache.CachedItem) error
	Delete(ctx context.Context, itemID string) error
	Tombstone(ctx context.Context, itemID string) error
}

// itemCache adapts an optional ItemCache to the domain model. Cache errors
// are logged and never fail the request.
type itemCache struct {
	cache ItemCache
	log   logger.Logger
}

func (c *itemCache) get(ctx context.Context, id string) (*models.Item, bool) {
	if c.cache == nil {
		return nil, false
	}
	cached, err := c.cache.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, pkgcache.ErrMiss) {
			c.log.WarnContext(ctx, "item cache read failed", "item_id", id, "error", err)
		}
		return nil, false
	}
	item, err := fromCached(cached)
	if err != nil {
		c.log.WarnContext(ctx, "discarding undecodable cache entry", "item_id", id, "error", err)
		return nil, false
	}
	return item, true
}

func (c *itemCache) set(ctx context.Context, item *models.Item) {
	if c.cache == nil {
		return
	}
	cached, err := toCached(item)
	if err == nil {
		err = c.cache.Set(ctx, cached)
	}
	if err != nil {
		c.log.WarnContext(ctx, "item cache write failed", "item_id", item.ID, "error", err)
	}
}

// refresh writes a just-mutated item through to the cache. When the write
// fails the entry is evicted so the next read goes to the store.
func (c *itemCache) refresh(ctx context.Context, item *models.Item) {
	if c.cache == nil {
		return
	}
	cached, err := toCached(item)
	if err == nil {
		err = c.cache.Set(ctx, cached)
	}
	if err != nil {
		c.log.WarnContext(ctx, "item cache refresh failed, evicting", "item_id", item.ID, "error", err)
		c.evict(ctx, item.ID)
	}
}

// bury tombstones a deleted item so an in-flight read cannot re-cache it.
func (c *itemCache) bury(ctx context.Context, id string) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Tombstone(ctx, id); err != nil {
		c.log.WarnContext(ctx, "item cache tombstone failed, evicting", "item_id", id, "error", err)
		c.evict(ctx, id)
	}
}

func (c *itemCache) evict(ctx context.Context, id string) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Delete(ctx, id); err != nil {
		c.log.WarnContext(ctx, "item cache evict failed", "item_id", id, "error", err)
	}
}

func toCached(item *models.Item) (*pkgcache.CachedItem, error) {
	var extra string
	if len(item.Extra) > 0 {
		data, err := json.Marshal(item.Extra)
		if err != nil {
			return nil, fmt.Errorf("encode extra attributes: %w", err)
		}
		extra = string(data)
	}
	return &pkgcache.CachedItem{
		ID:                 item.ID,
		Type:               item.Type.String(),
		CaseID:             item.CaseID,
		Category:           item.Category,
		Brand:              item.Brand,
		Details:            item.Details,
		Location:           item.Location,
		Date:               item.Date,
		Time:               item.Time,
		ReporterName:       item.Reporter.Name,
		ReporterContact:    item.Reporter.Contact,
		ReporterStudentID:  item.Reporter.StudentID,
		ReporterLiffUserID: item.Reporter.LiffUserID,
		ImageURL:           item.ImageURL,
		Status:             item.Status.String(),
		CreatedAt:          models.FormatTimestamp(item.CreatedAt),
		UpdatedAt:          models.FormatTimestamp(item.UpdatedAt),
		Extra:              extra,
	}, nil
}

func fromCached(c *pkgcache.CachedItem) (*models.Item, error) {
	itemType, ok := models.ParseItemType(c.Type)
	if !ok {
		return nil, fmt.Errorf("unknown item type %q", c.Type)
	}
	status, err := models.ParseStatus(c.Status)
	if err != nil {
		return nil, err
	}
	created, err := time.Parse(models.TimestampLayout, c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	updated, err := time.Parse(models.TimestampLayout, c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	item := &models.Item{
		ID:       c.ID,
		Type:     itemType,
		CaseID:   c.CaseID,
		Category: c.Category,
		Brand:    c.Brand,
		Details:  c.Details,
		Location: c.Location,
		Date:     c.Date,
		Time:     c.Time,
		Reporter: models.Reporter{
			Name:       c.ReporterName,
			Contact:    c.ReporterContact,
			StudentID:  c.ReporterStudentID,
			LiffUserID: c.ReporterLiffUserID,
		},
		ImageURL:  c.ImageURL,
		Status:    status,
		CreatedAt: created,
		UpdatedAt: updated,
	}
	if c.Extra != "" {
		dec := json.NewDecoder(strings.NewReader(c.Extra))
		dec.UseNumber()
		if err := dec.Decode(&item.Extra); err != nil {
			return nil, fmt.Errorf("decode extra attributes: %w", err)
		}
		for k, v := range item.Extra {
			item.Extra[k] = normalizeJSONNumber(v)
		}
	}
	return item, nil
}

// normalizeJSONNumber restores int64/float64 for numbers decoded with UseNumber.
func normalizeJSONNumber(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		for k, e := range t {
			t[k] = normalizeJSONNumber(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = normalizeJSONNumber(e)
		}
		return t
	default:
		return v
	}
}
