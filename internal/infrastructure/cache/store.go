// Package cache provides the short-lived coordination state shared by the API
// and the reconciliation job: processed-event markers for idempotent event
// handling and the reconciliation run lock.
package cache

import (
	"github.com/carbonlink/backend/internal/application/reconciliation"
	"github.com/carbonlink/backend/internal/domain/shared"
)

const (
	defaultIdempotencyPrefix = "carbonlink:event:processed:"
	defaultLockPrefix        = "carbonlink:lock:"
)

// Store is both an idempotency store and a run lock
type Store interface {
	shared.IdempotencyStore
	reconciliation.RunLock
}
