// Package blobstore holds the raw bytes of stored datasets.
package blobstore

import "context"

// Store is a flat key/value blob store. Get returns common.ErrorNotFound
// for unknown keys.
type Store interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
}
