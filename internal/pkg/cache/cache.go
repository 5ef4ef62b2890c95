// Package cache memoises computed statistics between writes.
package cache

import (
	"context"
)

// Cache stores JSON-serialisable values under a generation. Invalidate starts a
// new generation; entries of older generations are never read again.
//
// Callers read the generation once, then pass it to both Get and Set, so a value
// computed while an invalidation lands is stored where nobody looks for it.
type Cache interface {
	// Generation returns the current generation
	Generation(ctx context.Context) (int64, error)

	// Get decodes the entry for key in generation gen into dest and reports whether it was present
	Get(ctx context.Context, gen int64, key string, dest interface{}) (bool, error)

	// Set stores value under key in generation gen for the cache's TTL
	Set(ctx context.Context, gen int64, key string, value interface{}) error

	// Invalidate starts a new generation
	Invalidate(ctx context.Context) error
}

// Noop is a Cache that never stores anything
type Noop struct{}

// Generation is always zero
func (Noop) Generation(context.Context) (int64, error) { return 0, nil }

// Get always misses
func (Noop) Get(context.Context, int64, string, interface{}) (bool, error) { return false, nil }

// Set discards the value
func (Noop) Set(context.Context, int64, string, interface{}) error { return nil }

// Invalidate does nothing
func (Noop) Invalidate(context.Context) error { return nil }
