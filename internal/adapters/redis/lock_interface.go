package redis

import "context"

// WindowLock guards one analysis window against concurrent runs.
// Implementations may be swapped (Redis, PostgreSQL advisory locks, no-op).
type WindowLock interface {
	// TryAcquire attempts to acquire the lock.
	// Returns false if another process already holds it.
	TryAcquire(ctx context.Context) (bool, error)

	// Release releases the lock
	Release(ctx context.Context) error

	// Key returns the lock resource name
	Key() string
}
