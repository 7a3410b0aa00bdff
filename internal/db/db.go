// Package db defines the storage driver contracts shared by the
// repositories. Implementations live in the driver subpackages.
package db

import (
	"context"
	"time"
)

// KV is a key-value store used for caching reader predictions.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Ping(ctx context.Context) error
	Close()
}
