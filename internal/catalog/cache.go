package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a read-through cache for product documents. A nil Cache or a cache
// miss is never an error; the caller falls back to the store.
type Cache struct {
	Client *redis.Client
	TTL    time.Duration
}

func cacheKey(slug string) string {
	return "catalog:product:" + slug
}

// Get returns the cached product for slug, or (nil, nil) on a miss.
func (c *Cache) Get(ctx context.Context, slug string) (*Product, error) {
	if c == nil || c.Client == nil {
		return nil, nil
	}
	raw, err := c.Client.Get(ctx, cacheKey(slug)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("cache get: %w", err)
	}
	var p Product
	if err := json.Unmarshal(raw, &p); err != nil {
		// A malformed cached document is treated as a miss and overwritten
		// on the next Set.
		return nil, nil
	}
	return &p, nil
}

// Set stores a product document for the configured TTL.
func (c *Cache) Set(ctx context.Context, p *Product) error {
	if c == nil || c.Client == nil || p == nil {
		return nil
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	return c.Client.Set(ctx, cacheKey(p.Slug), raw, c.TTL).Err()
}

// Invalidate drops the cached document for slug.
func (c *Cache) Invalidate(ctx context.Context, slug string) error {
	if c == nil || c.Client == nil {
		return nil
	}
	return c.Client.Del(ctx, cacheKey(slug)).Err()
}
