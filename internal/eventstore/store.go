package eventstore

import (
	"context"
	"time"
)

// Store defines the interface for persisting and retrieving events.
type Store interface {
	// Append adds a new event to the store.
	Append(ctx context.Context, runID, eventType string, at time.Time, payload []byte, metadata map[string]string) error

	// GetByRunID retrieves all events for a specific run in append order.
	GetByRunID(ctx context.Context, runID string) ([]Event, error)

	// GetRange retrieves events within a time range.
	GetRange(ctx context.Context, start, end time.Time) ([]Event, error)

	// LatestRunID returns the run id of the most recently appended event, or
	// ErrNoRuns when the store is empty.
	LatestRunID(ctx context.Context) (string, error)

	// Close closes the store and releases resources.
	Close() error
}
