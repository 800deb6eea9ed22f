package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"medstaff-dashboard/internal/domain"
	"medstaff-dashboard/internal/domain/model"
	"medstaff-dashboard/internal/domain/ports/repository"
	"medstaff-dashboard/internal/infra/metrics"
)

const (
	categoriesKey = "reference:categories"
	servicesKey   = "reference:services"
)

var _ repository.ReferenceCache = (*ReferenceCache)(nil)

// ReferenceCache keeps at most maxItems entries per list; a save overwrites the
// previous list.
type ReferenceCache struct {
	client   RedisClient
	ttl      time.Duration
	maxItems int
}

func NewReferenceCache(client RedisClient, ttl time.Duration, maxItems int) *ReferenceCache {
	return &ReferenceCache{client: client, ttl: ttl, maxItems: maxItems}
}

func (c *ReferenceCache) GetCategories(ctx context.Context) ([]model.Category, error) {
	var out []model.Category
	if err := c.get(ctx, categoriesKey, "categories", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ReferenceCache) SaveCategories(ctx context.Context, items []model.Category) error {
	return c.save(ctx, categoriesKey, "categories", bounded(items, c.maxItems), len(items))
}

func (c *ReferenceCache) GetServices(ctx context.Context) ([]model.Service, error) {
	var out []model.Service
	if err := c.get(ctx, servicesKey, "services", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ReferenceCache) SaveServices(ctx context.Context, items []model.Service) error {
	return c.save(ctx, servicesKey, "services", bounded(items, c.maxItems), len(items))
}

func (c *ReferenceCache) Remove(ctx context.Context) error {
	return c.client.Del(ctx, categoriesKey, servicesKey)
}

func (c *ReferenceCache) get(ctx context.Context, key, name string, dst any) error {
	val, err := c.client.Get(ctx, key)
	if errors.Is(err, Nil) {
		metrics.IncCacheRequest(name, "miss")
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("reference cache get %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(val), dst); err != nil {
		metrics.IncCacheRequest(name, "miss")
		_ = c.client.Del(ctx, key)
		return domain.ErrNotFound
	}
	metrics.IncCacheRequest(name, "hit")
	return nil
}

func (c *ReferenceCache) save(ctx context.Context, key, name string, items any, original int) error {
	b, err := json.Marshal(items)
	if err != nil {
		return err
	}
	if c.maxItems > 0 && original > c.maxItems {
		metrics.AddCacheTruncated(name, original-c.maxItems)
	}
	return c.client.Set(ctx, key, b, c.ttl)
}

func bounded[T any](items []T, max int) []T {
	if max > 0 && len(items) > max {
		return items[:max]
	}
	return items
}
