// Package store is the key-value persistence used by every repository.
// Values are JSON documents. There are no transactions: concurrent
// writers to the same key are last-writer-wins.
package store

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrUnavailable is returned when the backing store cannot be reached.
var ErrUnavailable = errors.New("store unavailable")

type Store interface {
	// Get returns the raw JSON stored at key. ok is false when absent.
	Get(ctx context.Context, key string) (raw json.RawMessage, ok bool, err error)
	// Set JSON-encodes value and stores it at key.
	Set(ctx context.Context, key string, value any) error
	Remove(ctx context.Context, key string) error
	// Keys lists the keys that start with prefix, in no particular order.
	Keys(ctx context.Context, prefix string) ([]string, error)
	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
	// Backend names the implementation ("redis", "memory").
	Backend() string
}
