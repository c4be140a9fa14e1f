package kv

import "context"

// Store defines the interface for a key-value store holding values of type A.
// Implementations of this interface can be swapped out,
// allowing for different storage backends (e.g., in-memory, on-disk, Raft-replicated).
//
// Failures are reported as *ReadError values. Any other error returned by an
// implementation is treated as a db-error by callers.
type Store[A any] interface {
	// Insert stores value under key, replacing any previous value.
	Insert(ctx context.Context, key string, value A) error

	// Read retrieves the value associated with the given key.
	// Returns a not-found error if the key does not exist.
	Read(ctx context.Context, key string) (A, error)

	// Has reports whether the key exists.
	// An absent key is (false, nil), never a not-found error.
	Has(ctx context.Context, key string) (bool, error)

	// Keys returns all keys in the store. There is no guarantee on order.
	Keys(ctx context.Context) ([]string, error)

	// Delete removes a key from the store.
	// Returns a not-found error if the key does not exist.
	Delete(ctx context.Context, key string) error

	// Clear removes every key from the store.
	Clear(ctx context.Context) error
}
