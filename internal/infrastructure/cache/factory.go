package cache

import (
	"fmt"

	"github.com/carbonlink/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// StoreFactory creates coordination stores based on configuration
type StoreFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// StoreFactoryOption is a functional option for configuring the factory
type StoreFactoryOption func(*StoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory store
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewStoreFactory creates a new factory
func NewStoreFactory(cfg config.RedisConfig, opts ...StoreFactoryOption) *StoreFactory {
	f := &StoreFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateStore returns a Redis store, or an in-memory one when Redis is
// unreachable and fallback is allowed. The in-memory run lock does not
// prevent overlapping runs across processes.
func (f *StoreFactory) CreateStore() (Store, error) {
	if f.redisConfig.Host != "" {
		store, err := NewRedisStore(RedisConfig{
			Host:     f.redisConfig.Host,
			Port:     f.redisConfig.Port,
			Password: f.redisConfig.Password,
			DB:       f.redisConfig.DB,
		})
		if err == nil {
			f.logger.Info("Using Redis coordination store", zap.String("addr", f.redisConfig.Addr()))
			return store, nil
		}
		if !f.allowInMemoryFallback {
			return nil, fmt.Errorf("redis required but unavailable: %w", err)
		}
		f.logger.Warn("Redis unavailable, falling back to in-memory store. "+
			"Events may be handled twice and runs may overlap across instances.",
			zap.Error(err),
		)
		return NewInMemoryStore(), nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required but no host configured")
	}
	f.logger.Info("No Redis host configured, using in-memory coordination store")
	return NewInMemoryStore(), nil
}
