// Package cache is the durable local key/value layer. Collections are kept
// as JSON documents under fixed keys; a Store persists raw bytes and Cache
// adds typed encode/decode with the "log and carry on" failure policy.
package cache

import "context"

// Store is a durable byte store. Get returns (nil, nil) for absent keys.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error

	// SetMulti and DeleteMulti apply all changes or none.
	SetMulti(ctx context.Context, values map[string][]byte) error
	DeleteMulti(ctx context.Context, keys ...string) error

	Close() error
}
