package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/restaurant/backend/internal/application/catalog"
	"go.uber.org/zap"
)

const (
	defaultTTL       = 10 * time.Minute
	defaultKeyPrefix = "restaurant:menu_item:"
)

// RedisMenuItemCache caches menu item responses in Redis so every instance sees the same entries.
// Redis failures are logged and treated as misses.
type RedisMenuItemCache struct {
	client    redis.UniversalClient
	ttl       time.Duration
	keyPrefix string
	logger    *zap.Logger
}

// NewRedisMenuItemCache wraps an existing client
func NewRedisMenuItemCache(client redis.UniversalClient, ttl time.Duration, logger *zap.Logger) *RedisMenuItemCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisMenuItemCache{
		client:    client,
		ttl:       ttl,
		keyPrefix: defaultKeyPrefix,
		logger:    logger.Named("menu_item_cache"),
	}
}

func (c *RedisMenuItemCache) key(id uuid.UUID) string {
	return c.keyPrefix + id.String()
}

// Get loads the response for id
func (c *RedisMenuItemCache) Get(ctx context.Context, id uuid.UUID) (*catalog.MenuItemResponse, bool) {
	data, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("Menu item cache read failed", zap.String("menu_item_id", id.String()), zap.Error(err))
		}
		return nil, false
	}

	var item catalog.MenuItemResponse
	if err := json.Unmarshal(data, &item); err != nil {
		c.logger.Warn("Dropping undecodable menu item cache entry", zap.String("menu_item_id", id.String()), zap.Error(err))
		c.client.Del(ctx, c.key(id))
		return nil, false
	}
	return &item, true
}

// Set stores item with the configured TTL
func (c *RedisMenuItemCache) Set(ctx context.Context, item *catalog.MenuItemResponse) {
	if item == nil {
		return
	}
	data, err := json.Marshal(item)
	if err != nil {
		c.logger.Warn("Menu item cache encode failed", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, c.key(item.ID), data, c.ttl).Err(); err != nil {
		c.logger.Warn("Menu item cache write failed", zap.String("menu_item_id", item.ID.String()), zap.Error(err))
	}
}

// Invalidate deletes the entries for ids in one round trip
func (c *RedisMenuItemCache) Invalidate(ctx context.Context, ids ...uuid.UUID) {
	if len(ids) == 0 {
		return
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = c.key(id)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("Menu item cache invalidation failed", zap.Int("count", len(ids)), zap.Error(err))
	}
}

// Ping checks that Redis answers
func (c *RedisMenuItemCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the underlying client
func (c *RedisMenuItemCache) Close() error {
	return c.client.Close()
}

var _ catalog.MenuItemCache = (*RedisMenuItemCache)(nil)
