package carbon

import (
	"context"
	"time"
)

// Repository persists emission records.
type Repository interface {
	Create(ctx context.Context, rec Record) error
	// List returns matching records, newest date first.
	List(ctx context.Context, f Filter) ([]Record, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// Cache stores serialized aggregates between mutations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}
