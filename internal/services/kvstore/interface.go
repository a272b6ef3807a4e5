// Package kvstore is the expiring key-value store behind job records, the
// per-channel ingestion lock and the job queue.
package kvstore

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a key is missing, expired, or a queue is empty
var ErrNotFound = errors.New("key not found")

// Store defines the operations job orchestration needs from a key-value store
type Store interface {
	// Get retrieves a value
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with a TTL; zero TTL keeps it until deleted
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// SetNX stores a value only if the key is absent and reports whether it did
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)

	// Delete removes a key
	Delete(ctx context.Context, key string) error

	// DeleteIfEquals removes a key only while it still holds value
	DeleteIfEquals(ctx context.Context, key string, value []byte) (bool, error)

	// Push appends a value to the tail of a FIFO queue
	Push(ctx context.Context, queue string, value []byte) error

	// Pop removes the head of a FIFO queue
	Pop(ctx context.Context, queue string) ([]byte, error)

	// Ping checks the store is reachable
	Ping(ctx context.Context) error

	// Close releases resources
	Close() error
}

// Stats provides statistics about store usage
type Stats struct {
	Hits      int64
	Misses    int64
	Sets      int64
	Deletes   int64
	Evictions int64
	Keys      int64
}
