package cache

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/restaurant/backend/internal/application/catalog"
	"github.com/restaurant/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// MenuItemCache is a catalog cache that owns resources to release on shutdown
type MenuItemCache interface {
	catalog.MenuItemCache
	io.Closer
	Ping(ctx context.Context) error
}

// Factory builds the menu item cache from configuration
type Factory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
	pingTimeout           time.Duration
}

// FactoryOption configures a Factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory and the caches it builds
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back to
// an in-memory cache. Defaults to true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// NewFactory creates a new Factory
func NewFactory(cfg config.RedisConfig, opts ...FactoryOption) *Factory {
	f := &Factory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
		pingTimeout:           5 * time.Second,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateRedisCache connects to Redis and verifies the connection
func (f *Factory) CreateRedisCache(ctx context.Context) (*RedisMenuItemCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     f.redisConfig.Addr(),
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, f.pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", f.redisConfig.Addr(), err)
	}

	return NewRedisMenuItemCache(client, f.redisConfig.CacheTTL, f.logger), nil
}

// CreateCache returns a Redis cache when Redis is enabled and reachable,
// otherwise an in-memory cache.
func (f *Factory) CreateCache(ctx context.Context) (MenuItemCache, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("Redis disabled, using in-memory menu item cache")
		return NewInMemoryMenuItemCache(f.redisConfig.CacheTTL, WithInMemoryLogger(f.logger)), nil
	}

	c, err := f.CreateRedisCache(ctx)
	if err == nil {
		f.logger.Info("Using Redis menu item cache", zap.String("addr", f.redisConfig.Addr()))
		return c, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for menu item cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory menu item cache", zap.Error(err))
	return NewInMemoryMenuItemCache(f.redisConfig.CacheTTL, WithInMemoryLogger(f.logger)), nil
}
