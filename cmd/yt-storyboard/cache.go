package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	gocache "github.com/patrickmn/go-cache"

	"github.com/doingodswork/yt-storyboard/pkg/storyboard"
)

const redisKeyPrefix = "sb:"

// cacheItem is one cached concrete resolution. Unresolved outcomes are never
// cached, because they might change any moment.
type cacheItem struct {
	Empty    bool                `json:"empty,omitempty"`
	Renderer storyboard.Renderer `json:"renderer"`
	Created  time.Time           `json:"created"`
}

// resolutionCache caches concrete resolutions per video id.
type resolutionCache interface {
	Set(ctx context.Context, videoID string, item cacheItem) error
	Get(ctx context.Context, videoID string) (cacheItem, bool, error)
}

var _ resolutionCache = (*memoryCache)(nil)

// memoryCache is backed by github.com/patrickmn/go-cache.
type memoryCache struct {
	cache *gocache.Cache
}

func newMemoryCache(maxAge time.Duration) *memoryCache {
	return &memoryCache{
		cache: gocache.New(maxAge, 10*time.Minute),
	}
}

func (c *memoryCache) Set(_ context.Context, videoID string, item cacheItem) error {
	c.cache.Set(videoID, item, 0)
	return nil
}

func (c *memoryCache) Get(_ context.Context, videoID string) (cacheItem, bool, error) {
	itemIface, found := c.cache.Get(videoID)
	if !found {
		return cacheItem{}, found, nil
	}
	item, ok := itemIface.(cacheItem)
	if !ok {
		return cacheItem{}, found, fmt.Errorf("Couldn't cast cached value to cacheItem: type was: %T", itemIface)
	}
	return item, found, nil
}

var _ resolutionCache = (*redisCache)(nil)

// redisCache stores JSON-encoded cache items in Redis, so multiple instances
// can share one resolution cache.
type redisCache struct {
	rdb    *redis.Client
	maxAge time.Duration
}

func newRedisCache(rdb *redis.Client, maxAge time.Duration) *redisCache {
	return &redisCache{
		rdb:    rdb,
		maxAge: maxAge,
	}
}

func (c *redisCache) Set(ctx context.Context, videoID string, item cacheItem) error {
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("Couldn't encode cache item: %v", err)
	}
	if err := c.rdb.Set(ctx, redisKeyPrefix+videoID, data, c.maxAge).Err(); err != nil {
		return fmt.Errorf("Couldn't store cache item in Redis: %v", err)
	}
	return nil
}

func (c *redisCache) Get(ctx context.Context, videoID string) (cacheItem, bool, error) {
	data, err := c.rdb.Get(ctx, redisKeyPrefix+videoID).Bytes()
	if err == redis.Nil {
		return cacheItem{}, false, nil
	} else if err != nil {
		return cacheItem{}, false, fmt.Errorf("Couldn't get cache item from Redis: %v", err)
	}
	var item cacheItem
	if err := json.Unmarshal(data, &item); err != nil {
		return cacheItem{}, true, fmt.Errorf("Couldn't decode cache item: %v", err)
	}
	return item, true, nil
}
