// Package cache provides the expiring key/value store used for version info.
package cache

import (
	"context"
	"time"
)

var (
	_ Cache = (*MemoryCache)(nil)
	_ Cache = (*RedisCache)(nil)
)

// Cache stores values that expire after a fixed duration. A missing or
// expired key is reported as a miss, not as an error.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
