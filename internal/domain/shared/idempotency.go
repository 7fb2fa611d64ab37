package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers keys of requests and events that were already
// handled. Keys are scoped by the caller (for example "pos-sale:<company>:<key>").
type IdempotencyStore interface {
	// MarkProcessed records key with a TTL. It returns false when the key was
	// already present.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)
	IsProcessed(ctx context.Context, key string) (bool, error)
	// Forget removes a key so a failed attempt can be retried
	Forget(ctx context.Context, key string) error
	Close() error
}

// DefaultIdempotencyTTL is how long a processed key is remembered
const DefaultIdempotencyTTL = 24 * time.Hour
