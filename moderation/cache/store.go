package cache

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/ReneKroon/ttlcache"

	"github.com/purechat/purechat-server/moderation"
)

type Cache struct {
	mu    sync.Mutex
	cache *ttlcache.Cache
}

// NewInCache creates a strike store whose counts expire ttl after the last
// recorded strike, giving users a clean slate after a quiet period.
func NewInCache(ttl time.Duration) moderation.StrikeStore {
	cache := ttlcache.NewCache()
	cache.SetTTL(ttl)

	// Only recording a strike refreshes the window, reads do not.
	cache.SkipTtlExtensionOnHit(true)

	return &Cache{
		cache: cache,
	}
}

func (c *Cache) RecordStrike(_ context.Context, userID int64) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	strikes := 1
	if cached, ok := c.cache.Get(toCacheKey(userID)); ok {
		strikes = cached.(int) + 1
	}

	c.cache.Set(toCacheKey(userID), strikes)
	return strikes, nil
}

func (c *Cache) GetStrikes(_ context.Context, userID int64) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cached, ok := c.cache.Get(toCacheKey(userID))
	if !ok {
		return 0, nil
	}
	return cached.(int), nil
}

func (c *Cache) ResetStrikes(_ context.Context, userID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.Remove(toCacheKey(userID))
	return nil
}

func toCacheKey(userID int64) string {
	return strconv.FormatInt(userID, 10)
}
