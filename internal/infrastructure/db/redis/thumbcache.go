package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultThumbTTL = 24 * time.Hour

// ThumbnailCache stores rendered thumbnail bytes under their deterministic
// rendering key. A cache miss is returned as (nil, nil), never as an error.
type ThumbnailCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewThumbnailCache creates a ThumbnailCache wrapping the given Redis client.
// A non-positive ttl falls back to the default.
func NewThumbnailCache(client *redis.Client, ttl time.Duration) *ThumbnailCache {
	if ttl <= 0 {
		ttl = defaultThumbTTL
	}
	return &ThumbnailCache{client: client, ttl: ttl}
}

// Get retrieves the cached bytes for key, or nil on a miss.
func (c *ThumbnailCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("thumbnail cache get: %w", err)
	}
	return data, nil
}

// Set stores the bytes for key, expiring after the configured TTL.
func (c *ThumbnailCache) Set(ctx context.Context, key string, data []byte) error {
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("thumbnail cache set: %w", err)
	}
	return nil
}
