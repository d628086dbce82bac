package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/restaurant/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// unreachableClient points at a port nothing listens on
func unreachableClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestRedisMenuItemCache_FailuresAreMisses(t *testing.T) {
	core, recorded := observer.New(zapcore.WarnLevel)
	c := NewRedisMenuItemCache(unreachableClient(), time.Minute, zap.New(core))
	defer c.Close()
	ctx := context.Background()

	item := newResponse("Hu Tieu")
	c.Set(ctx, item)

	_, ok := c.Get(ctx, item.ID)
	assert.False(t, ok)

	c.Invalidate(ctx, item.ID)
	c.Invalidate(ctx)

	assert.Equal(t, 1, recorded.FilterMessage("Menu item cache write failed").Len())
	assert.Equal(t, 1, recorded.FilterMessage("Menu item cache read failed").Len())
	assert.Equal(t, 1, recorded.FilterMessage("Menu item cache invalidation failed").Len())
}

func TestRedisMenuItemCache_Ping(t *testing.T) {
	c := NewRedisMenuItemCache(unreachableClient(), time.Minute, nil)
	defer c.Close()

	assert.Error(t, c.Ping(context.Background()))
}

func TestRedisMenuItemCache_Key(t *testing.T) {
	c := NewRedisMenuItemCache(unreachableClient(), 0, nil)
	defer c.Close()

	id := uuid.MustParse("0b9f7a8e-2d3c-4c1a-9f7e-1a2b3c4d5e6f")
	assert.Equal(t, "restaurant:menu_item:0b9f7a8e-2d3c-4c1a-9f7e-1a2b3c4d5e6f", c.key(id))
	assert.Equal(t, defaultTTL, c.ttl)
}

func TestFactory_CreateCache(t *testing.T) {
	ctx := context.Background()
	unreachable := config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1, CacheTTL: time.Minute}

	t.Run("disabled redis uses memory", func(t *testing.T) {
		c, err := NewFactory(config.RedisConfig{CacheTTL: time.Minute}).CreateCache(ctx)
		require.NoError(t, err)
		defer c.Close()

		assert.IsType(t, &InMemoryMenuItemCache{}, c)
		assert.NoError(t, c.Ping(ctx))
	})

	t.Run("unreachable redis falls back to memory", func(t *testing.T) {
		core, recorded := observer.New(zapcore.WarnLevel)

		c, err := NewFactory(unreachable, WithLogger(zap.New(core))).CreateCache(ctx)
		require.NoError(t, err)
		defer c.Close()

		assert.IsType(t, &InMemoryMenuItemCache{}, c)
		assert.Equal(t, 1, recorded.Len())
	})

	t.Run("unreachable redis without fallback fails", func(t *testing.T) {
		_, err := NewFactory(unreachable, WithInMemoryFallback(false)).CreateCache(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "redis required")
	})
}
