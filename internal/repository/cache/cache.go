// Package cache stores serialized catalog entries in Redis or in process memory.
package cache

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrCacheMiss is returned when a key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// Client is the byte-level cache contract shared by the Redis and memory backends.
type Client interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// Key joins key segments with ':'.
func Key(parts ...string) string {
	return strings.Join(parts, ":")
}
