package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte payloads with a TTL.
type Cache interface {
	GetBytes(ctx context.Context, key string) (b []byte, ok bool, err error)
	SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}
