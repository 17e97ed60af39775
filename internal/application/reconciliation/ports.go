package reconciliation

import (
	"context"
	"errors"
	"time"
)

// ErrRunInProgress is returned when another instance holds the run lock
var ErrRunInProgress = errors.New("reconciliation: run already in progress")

// CursorStore persists the reconciliation cursor
type CursorStore interface {
	// Get returns the stored value, or 0 when the key has never been written
	Get(ctx context.Context, key string) (int, error)
	Set(ctx context.Context, key string, value int) error
}

// RunLock guards against overlapping runs across instances
type RunLock interface {
	// TryLock acquires key for ttl. It returns false when the key is held elsewhere.
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}
