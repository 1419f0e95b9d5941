package redis

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/vietddude/catalog/internal/core/domain"
	"github.com/vietddude/catalog/internal/infra/storage"
)

// DefaultHoldoff is how long a written product stays uncacheable. It should
// exceed the slowest repository read, so a lookup that started before the write
// cannot store the old row after it.
const DefaultHoldoff = 5 * time.Second

// tombstone replaces the entry of a written product for the holdoff window.
var tombstone = []byte("-")

// ProductCache is a read-through cache in front of a storage.ProductRepository.
// Lookups by ID are served from Redis when possible; writes go to the repository
// and then replace the cached entry with a short-lived tombstone. A miss
// populates the entry with SETNX, which cannot overwrite a tombstone, so a read
// racing a write never caches the row the write replaced. Cache failures are
// logged and bypassed, so they never fail an operation.
type ProductCache struct {
	rdb     *redis.Client
	repo    storage.ProductRepository
	ttl     time.Duration
	holdoff time.Duration
	log     *slog.Logger
}

// NewProductCache wraps repo with a Redis cache.
func NewProductCache(client *Client, repo storage.ProductRepository, ttl time.Duration) *ProductCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ProductCache{
		rdb:     client.rdb,
		repo:    repo,
		ttl:     ttl,
		holdoff: DefaultHoldoff,
		log:     slog.Default().With("component", "product_cache"),
	}
}

func productKey(id int64) string {
	return fmt.Sprintf("product:%d", id)
}

// Save writes through to the repository and invalidates the cached copy of an
// updated product. New products have nothing cached.
func (c *ProductCache) Save(ctx context.Context, p domain.Product) (domain.Product, error) {
	saved, err := c.repo.Save(ctx, p)
	if err != nil {
		return domain.Product{}, err
	}
	if p.ID != 0 {
		c.invalidate(ctx, saved.ID)
	}
	return saved, nil
}

// FindByID serves from the cache and falls back to the repository on a miss.
func (c *ProductCache) FindByID(ctx context.Context, id int64) (domain.Product, error) {
	fill := true
	data, err := c.rdb.Get(ctx, productKey(id)).Bytes()
	switch {
	case err == nil && bytes.Equal(data, tombstone):
		fill = false
	case err == nil:
		var p domain.Product
		if err := json.Unmarshal(data, &p); err == nil {
			return p, nil
		}
		c.log.Warn("Dropping undecodable cache entry", "id", id)
		c.evict(ctx, id)
	case !errors.Is(err, redis.Nil):
		c.log.Warn("Cache read failed", "id", id, "error", err)
	}

	p, err := c.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}

	if !fill {
		return p, nil
	}
	if data, err := json.Marshal(p); err == nil {
		// SETNX loses to a tombstone written since the lookup began.
		if err := c.rdb.SetNX(ctx, productKey(id), data, c.ttl).Err(); err != nil {
			c.log.Warn("Cache write failed", "id", id, "error", err)
		}
	}
	return p, nil
}

// DeleteByID deletes from the repository and invalidates the cached copy.
func (c *ProductCache) DeleteByID(ctx context.Context, id int64) error {
	if err := c.repo.DeleteByID(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

// FindAll is not cached.
func (c *ProductCache) FindAll(ctx context.Context, page domain.PageRequest) ([]domain.Product, int64, error) {
	return c.repo.FindAll(ctx, page)
}

// WithinTx runs fn in the underlying repository's transaction, bypassing the
// cache for reads. Products written inside fn are invalidated once it finishes.
func (c *ProductCache) WithinTx(ctx context.Context, fn func(repo storage.ProductRepository) error) error {
	tx, ok := c.repo.(storage.Transactor)
	if !ok {
		return fn(c)
	}

	var touched []int64
	err := tx.WithinTx(ctx, func(repo storage.ProductRepository) error {
		return fn(&writeTracker{ProductRepository: repo, touched: &touched})
	})
	for _, id := range touched {
		c.invalidate(ctx, id)
	}
	return err
}

// writeTracker records the IDs written through it.
type writeTracker struct {
	storage.ProductRepository
	touched *[]int64
}

func (w *writeTracker) Save(ctx context.Context, p domain.Product) (domain.Product, error) {
	saved, err := w.ProductRepository.Save(ctx, p)
	if err == nil {
		*w.touched = append(*w.touched, saved.ID)
	}
	return saved, err
}

func (w *writeTracker) DeleteByID(ctx context.Context, id int64) error {
	*w.touched = append(*w.touched, id)
	return w.ProductRepository.DeleteByID(ctx, id)
}

// invalidate replaces the entry with a tombstone for the holdoff window.
func (c *ProductCache) invalidate(ctx context.Context, id int64) {
	if err := c.rdb.Set(ctx, productKey(id), tombstone, c.holdoff).Err(); err != nil {
		c.log.Warn("Cache invalidate failed", "id", id, "error", err)
	}
}

func (c *ProductCache) evict(ctx context.Context, id int64) {
	if err := c.rdb.Del(ctx, productKey(id)).Err(); err != nil {
		c.log.Warn("Cache evict failed", "id", id, "error", err)
	}
}
