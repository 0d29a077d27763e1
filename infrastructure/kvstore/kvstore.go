// Package kvstore provides the durable local key-value store backing the
// offline engine. Keys are flat strings with ":"-separated prefixes; values
// are opaque bytes. The store is assumed to survive restarts but to have
// bounded, possibly-exhaustible capacity.
package kvstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get for a missing key.
var ErrNotFound = errors.New("kvstore: key not found")

type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Keys returns all keys with the given prefix, lexicographically ordered.
	Keys(ctx context.Context, prefix string) ([]string, error)
	// Usage sums the serialized byte length of all stored keys and values.
	Usage(ctx context.Context) (int64, error)
	// Clear removes every record.
	Clear(ctx context.Context) error
	Close() error
}
