package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// ItemCacheTTL is the time-to-live for cached items.
	ItemCacheTTL = 24 * time.Hour
	// TombstoneTTL bounds how long a deleted item blocks late cache writes.
	TombstoneTTL = 10 * time.Minute

	tombstoneField = "tombstone"

	itemCacheKeyPrefix = "item"
	purgeBatch         = 500
)

// ErrMiss is returned by Get when the key does not exist or has expired.
var ErrMiss = errors.New("cache miss")

// CachedItem is the flattened read model stored as a Redis hash.
// Timestamps are kept in their wire form and Extra as a JSON document.
type CachedItem struct {
	ID                 string `redis:"id"`
	Type               string `redis:"item_type"`
	CaseID             string `redis:"case_id"`
	Category           string `redis:"category"`
	Brand              string `redis:"brand"`
	Details            string `redis:"details"`
	Location           string `redis:"location"`
	Date               string `redis:"date"`
	Time               string `redis:"time"`
	ReporterName       string `redis:"reporter_name"`
	ReporterContact    string `redis:"reporter_contact"`
	ReporterStudentID  string `redis:"reporter_student_id"`
	ReporterLiffUserID string `redis:"reporter_liff_user_id"`
	ImageURL           string `redis:"image_url"`
	Status             string `redis:"status"`
	CreatedAt          string `redis:"created_at"`
	UpdatedAt          string `redis:"updated_at"`
	Extra              string `redis:"extra"`
}

// setIfFresher replaces the hash at KEYS[1] unless it is a tombstone or
// already holds a later updated_at. Timestamps are fixed width, so string
// order is time order.
var setIfFresher = redis.NewScript(`
if redis.call('HEXISTS', KEYS[1], 'tombstone') == 1 then
	return 0
end
local current = redis.call('HGET', KEYS[1], 'updated_at')
if current and current > ARGV[1] then
	return 0
end
redis.call('DEL', KEYS[1])
redis.call('HSET', KEYS[1], unpack(ARGV, 3))
redis.call('PEXPIRE', KEYS[1], ARGV[2])
return 1
`)

// fields flattens the item into HSET field/value pairs.
func (c *CachedItem) fields() []any {
	return []any{
		"id", c.ID,
		"item_type", c.Type,
		"case_id", c.CaseID,
		"category", c.Category,
		"brand", c.Brand,
		"details", c.Details,
		"location", c.Location,
		"date", c.Date,
		"time", c.Time,
		"reporter_name", c.ReporterName,
		"reporter_contact", c.ReporterContact,
		"reporter_student_id", c.ReporterStudentID,
		"reporter_liff_user_id", c.ReporterLiffUserID,
		"image_url", c.ImageURL,
		"status", c.Status,
		"created_at", c.CreatedAt,
		"updated_at", c.UpdatedAt,
		"extra", c.Extra,
	}
}

// ItemCache provides read/write operations for item cache entries.
// Key format: "item:{itemID}"
type ItemCache struct {
	client *RedisClient
	ttl    time.Duration
}

// NewItemCache creates a new ItemCache backed by the given RedisClient.
func NewItemCache(r *RedisClient) *ItemCache {
	return &ItemCache{client: r, ttl: ItemCacheTTL}
}

// Get retrieves a cached item by id. Returns ErrMiss when absent.
func (c *ItemCache) Get(ctx context.Context, itemID string) (*CachedItem, error) {
	res := c.client.Client().HGetAll(ctx, Key(itemID))
	vals, err := res.Result()
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}
	if _, dead := vals[tombstoneField]; dead || len(vals) == 0 {
		return nil, ErrMiss
	}
	var item CachedItem
	if err := res.Scan(&item); err != nil {
		return nil, fmt.Errorf("cache scan: %w", err)
	}
	return &item, nil
}

// Set writes a cached item as a Redis hash with a 24-hour TTL. The write is
// skipped when the entry is tombstoned or already holds a later updated_at,
// so a slow read-through cannot overwrite a newer item. A skipped write is
// not an error.
func (c *ItemCache) Set(ctx context.Context, item *CachedItem) error {
	args := append([]any{item.UpdatedAt, c.ttl.Milliseconds()}, item.fields()...)
	if err := setIfFresher.Run(ctx, c.client.Client(), []string{Key(item.ID)}, args...).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Tombstone marks a deleted item for TombstoneTTL. Get reports a miss and
// Set is refused until the marker expires.
func (c *ItemCache) Tombstone(ctx context.Context, itemID string) error {
	key := Key(itemID)
	pipe := c.client.Client().TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, tombstoneField, "1")
	pipe.Expire(ctx, key, TombstoneTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache tombstone: %w", err)
	}
	return nil
}

// Delete removes a cached item.
func (c *ItemCache) Delete(ctx context.Context, itemID string) error {
	if err := c.client.Client().Del(ctx, Key(itemID)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

// Purge removes every cached item and returns how many keys were dropped.
// Used after a bulk rewrite of stored records.
func (c *ItemCache) Purge(ctx context.Context) (int, error) {
	rdb := c.client.Client()
	iter := rdb.Scan(ctx, 0, itemCacheKeyPrefix+":*", purgeBatch).Iterator()
	batch := make([]string, 0, purgeBatch)
	removed := 0
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := rdb.Unlink(ctx, batch...).Result()
		if err != nil {
			return fmt.Errorf("cache purge: %w", err)
		}
		removed += int(n)
		batch = batch[:0]
		return nil
	}
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == purgeBatch {
			if err := flush(); err != nil {
				return removed, err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("cache purge scan: %w", err)
	}
	if err := flush(); err != nil {
		return removed, err
	}
	return removed, nil
}

// Key builds the Redis key for an item: "item:{itemID}".
func Key(itemID string) string {
	return fmt.Sprintf("%s:%s", itemCacheKeyPrefix, itemID)
}
