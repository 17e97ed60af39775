package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers delivered event IDs so a notification is sent
// once per event even when the bus redelivers it.
type IdempotencyStore interface {
	// MarkProcessed records eventID for ttl. It reports false when the ID
	// was already recorded, in which case the caller skips the event.
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)
	IsProcessed(ctx context.Context, eventID string) (bool, error)
	Close() error
}

// IdempotencyConfig mirrors event.idempotency_enabled and event.idempotency_ttl
type IdempotencyConfig struct {
	TTL     time.Duration
	Enabled bool
}

// DefaultIdempotencyTTL outlives any retry window of the in-process bus
const DefaultIdempotencyTTL = 24 * time.Hour

func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{TTL: DefaultIdempotencyTTL, Enabled: true}
}
