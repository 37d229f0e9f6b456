package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers processed event IDs so that a redelivered
// outbox event does not invalidate caches or fire notifications twice.
type IdempotencyStore interface {
	// MarkProcessed records the event ID with a TTL. It returns false
	// when the ID was already present.
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)

	IsProcessed(ctx context.Context, eventID string) (bool, error)

	Close() error
}

// IdempotencyConfig controls duplicate suppression for event handlers
type IdempotencyConfig struct {
	// TTL bounds how long an event ID is remembered. Past it the same
	// ID would be processed again.
	TTL time.Duration

	Enabled bool
}

func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
