// Package metadata is the flat key/value surface the client persists to: the
// credential and, for the local list variant, the serialized todo sequence.
//
// Backends: in-process memory, SQLite (the default local file), Postgres,
// Redis and S3. All of them assume a single writer per key space.
package metadata

import (
	"context"
)

// Repository is a byte-valued key/value store.
type Repository interface {
	// Get returns (nil, nil) when the key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set inserts or overwrites the value.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes the key; deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
