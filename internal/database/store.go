package database

import (
	"context"
	"errors"
)

// Standard errors for store operations.
var (
	// ErrNotFound indicates the requested key does not exist.
	ErrNotFound = errors.New("key not found")

	// ErrUnavailable indicates the backend could not be reached or failed
	// mid-operation. It is never returned for domain-level conditions.
	ErrUnavailable = errors.New("store unavailable")
)

// KV is one key/value pair returned by List.
type KV struct {
	Key   string
	Value []byte
}

// Store is a key-addressable document store. Values are opaque bytes; the
// repository layer stores JSON documents. Keys use ':'-separated segments
// ("clan:42:member:<jid>") so prefix listing walks one clan's records.
type Store interface {
	// Connection management
	Connect(ctx context.Context) error
	Close() error
	Ping(ctx context.Context) error

	// Get returns the value at key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores value at key, overwriting any previous value.
	Put(ctx context.Context, key string, value []byte) error

	// PutIfAbsent stores value at key only if the key does not exist.
	// It reports whether the write happened. The check and write are
	// atomic with respect to all other Store callers.
	PutIfAbsent(ctx context.Context, key string, value []byte) (bool, error)

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns all pairs whose key starts with prefix, in ascending
	// key order.
	List(ctx context.Context, prefix string) ([]KV, error)

	// DeletePrefix removes every key starting with prefix.
	DeletePrefix(ctx context.Context, prefix string) error

	// Incr atomically increments the counter at key and returns the new
	// value. A missing key counts from zero.
	Incr(ctx context.Context, key string) (int64, error)
}
