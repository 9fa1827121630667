package ports

import "context"

// KeyValueStore persists opaque text values by key.
// Get returns domain.ErrKeyNotFound for a missing key; Delete of a missing key succeeds.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}
