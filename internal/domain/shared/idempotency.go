package shared

import (
	"context"
	"time"
)

// IdempotencyStore is an advisory cache used to short-circuit duplicate
// webhook deliveries before a transaction is opened. It is not the source
// of truth for dedup; the durable event record is.
type IdempotencyStore interface {
	// MarkProcessed atomically marks an event as processed.
	// Returns true if the event was newly marked, false if it was
	// already marked by a previous call.
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)

	// IsProcessed reports whether the event has already been marked.
	IsProcessed(ctx context.Context, eventID string) (bool, error)

	// Close releases any resources held by the store.
	Close() error
}
