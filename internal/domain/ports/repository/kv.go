package repository

import (
	"context"
	"time"
)

// KeyValueStore is the opaque persistence collaborator behind wizard snapshots and
// cached reference data. Get returns domain.ErrNotFound for a missing key.
// A zero ttl stores the value without expiry.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
