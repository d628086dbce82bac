package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/application/catalog"
	"go.uber.org/zap"
)

const defaultCleanupInterval = 30 * time.Second

// cacheEntry wraps a cached value with its expiry
type cacheEntry[T any] struct {
	value     *T
	expiresAt time.Time
}

func (e *cacheEntry[T]) isExpired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// InMemoryMenuItemCache caches menu item responses in process memory.
// It does not share state across instances.
type InMemoryMenuItemCache struct {
	items    sync.Map // uuid.UUID -> *cacheEntry[catalog.MenuItemResponse]
	ttl      time.Duration
	logger   *zap.Logger
	stopCh   chan struct{}
	stopOnce sync.Once

	hits   atomic.Int64
	misses atomic.Int64
}

// InMemoryOption configures an InMemoryMenuItemCache
type InMemoryOption func(*InMemoryMenuItemCache)

// WithInMemoryLogger sets the logger
func WithInMemoryLogger(logger *zap.Logger) InMemoryOption {
	return func(c *InMemoryMenuItemCache) {
		c.logger = logger
	}
}

// NewInMemoryMenuItemCache creates the cache and starts expiry cleanup. Call Close to stop it.
func NewInMemoryMenuItemCache(ttl time.Duration, opts ...InMemoryOption) *InMemoryMenuItemCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	c := &InMemoryMenuItemCache{
		ttl:    ttl,
		logger: zap.NewNop(),
		stopCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	go c.cleanupExpired(defaultCleanupInterval)
	return c
}

// Get returns a copy of the cached response for id
func (c *InMemoryMenuItemCache) Get(_ context.Context, id uuid.UUID) (*catalog.MenuItemResponse, bool) {
	v, ok := c.items.Load(id)
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	entry := v.(*cacheEntry[catalog.MenuItemResponse])
	if entry.isExpired(time.Now()) {
		c.items.Delete(id)
		c.misses.Add(1)
		return nil, false
	}

	c.hits.Add(1)
	item := *entry.value
	item.AdditionalDetails = append([]catalog.AdditionalDetailResponse(nil), entry.value.AdditionalDetails...)
	return &item, true
}

// Set stores a copy of item
func (c *InMemoryMenuItemCache) Set(_ context.Context, item *catalog.MenuItemResponse) {
	if item == nil {
		return
	}
	stored := *item
	stored.AdditionalDetails = append([]catalog.AdditionalDetailResponse(nil), item.AdditionalDetails...)
	c.items.Store(item.ID, &cacheEntry[catalog.MenuItemResponse]{
		value:     &stored,
		expiresAt: time.Now().Add(c.ttl),
	})
}

// Invalidate drops the given ids
func (c *InMemoryMenuItemCache) Invalidate(_ context.Context, ids ...uuid.UUID) {
	for _, id := range ids {
		c.items.Delete(id)
	}
}

// Stats returns hit and miss counts since creation
func (c *InMemoryMenuItemCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Ping always succeeds
func (c *InMemoryMenuItemCache) Ping(context.Context) error {
	return nil
}

// Close stops the cleanup goroutine. It is safe to call more than once.
func (c *InMemoryMenuItemCache) Close() error {
	c.stopOnce.Do(func() { close(c.stopCh) })
	return nil
}

func (c *InMemoryMenuItemCache) cleanupExpired(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case now := <-ticker.C:
			removed := 0
			c.items.Range(func(key, value any) bool {
				if value.(*cacheEntry[catalog.MenuItemResponse]).isExpired(now) {
					c.items.Delete(key)
					removed++
				}
				return true
			})
			if removed > 0 {
				c.logger.Debug("Evicted expired menu items from cache", zap.Int("count", removed))
			}
		}
	}
}

var _ catalog.MenuItemCache = (*InMemoryMenuItemCache)(nil)
