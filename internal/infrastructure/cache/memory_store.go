package cache

import (
	"context"
	"sync"
	"time"
)

// InMemoryStore implements Store with process-local maps.
// It is suitable for single-instance deployments and testing.
type InMemoryStore struct {
	mu        sync.Mutex
	processed map[string]time.Time
	locks     map[string]time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryStore creates a store and starts its expiry sweeper
func NewInMemoryStore() *InMemoryStore {
	s := &InMemoryStore{
		processed: make(map[string]time.Time),
		locks:     make(map[string]time.Time),
		stopChan:  make(chan struct{}),
	}

	s.wg.Add(1)
	go s.cleanupLoop()

	return s
}

// MarkProcessed marks an event as processed with a TTL.
// Returns true if the event was newly marked.
func (s *InMemoryStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	return s.setIfAbsent(s.processed, eventID, ttl), nil
}

// IsProcessed checks if an event has already been processed
func (s *InMemoryStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiresAt, ok := s.processed[eventID]
	return ok && time.Now().Before(expiresAt), nil
}

// TryLock acquires key for ttl
func (s *InMemoryStore) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return s.setIfAbsent(s.locks, key, ttl), nil
}

// Unlock releases key
func (s *InMemoryStore) Unlock(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locks, key)
	return nil
}

func (s *InMemoryStore) setIfAbsent(m map[string]time.Time, key string, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if expiresAt, ok := m[key]; ok && now.Before(expiresAt) {
		return false
	}
	m[key] = now.Add(ttl)
	return true
}

// Close stops the sweeper. Safe to call multiple times.
func (s *InMemoryStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

func (s *InMemoryStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *InMemoryStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for _, m := range []map[string]time.Time{s.processed, s.locks} {
		for key, expiresAt := range m {
			if now.After(expiresAt) {
				delete(m, key)
			}
		}
	}
}

// Size returns the number of processed-event markers
func (s *InMemoryStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.processed)
}

var _ Store = (*InMemoryStore)(nil)
