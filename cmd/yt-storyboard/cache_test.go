package main

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/doingodswork/yt-storyboard/pkg/storyboard"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	cache := newMemoryCache(time.Hour)

	_, found, err := cache.Get(ctx, "abc123")
	require.NoError(t, err)
	require.False(t, found)

	recommendedLevel := 2
	exp := cacheItem{
		Renderer: storyboard.Renderer{
			Spec:             "https://x/sb.xml",
			RecommendedLevel: &recommendedLevel,
		},
		Created: time.Now(),
	}
	require.NoError(t, cache.Set(ctx, "abc123", exp))

	actual, found, err := cache.Get(ctx, "abc123")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, exp, actual)
}

func TestMemoryCacheEmptyItem(t *testing.T) {
	ctx := context.Background()
	cache := newMemoryCache(time.Hour)

	exp := cacheItem{
		Empty:   true,
		Created: time.Now(),
	}
	require.NoError(t, cache.Set(ctx, "oldvid", exp))

	actual, found, err := cache.Get(ctx, "oldvid")
	require.NoError(t, err)
	require.True(t, found)
	require.True(t, actual.Empty)
}

func TestRedisCache(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	ctx := context.Background()
	rdb := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	cache := newRedisCache(rdb, time.Hour)

	// Empty Get
	_, found, err := cache.Get(ctx, "abc123")
	require.NoError(t, err)
	require.False(t, found)

	recommendedLevel := 1
	exp := cacheItem{
		Renderer: storyboard.Renderer{
			Spec:             "https://x/live.xml",
			IsLiveStream:     true,
			RecommendedLevel: &recommendedLevel,
		},
		Created: time.Now(),
	}
	require.NoError(t, cache.Set(ctx, "abc123", exp))

	actual, found, err := cache.Get(ctx, "abc123")
	require.NoError(t, err)
	require.True(t, found)
	// We can't use require.Equal here, because the marshalled time loses its wall time, leading to a difference for the internally used reflect.DeepEquals.
	require.True(t, cmp.Equal(exp, actual))
}

func TestResponseFromItem(t *testing.T) {
	renderer := storyboard.Renderer{Spec: "https://x/sb.xml"}
	response := responseFromItem("abc123", cacheItem{Renderer: renderer})
	require.Equal(t, "abc123", response.VideoID)
	require.False(t, response.Empty)
	require.NotNil(t, response.Renderer)
	require.Equal(t, renderer, *response.Renderer)

	response = responseFromItem("oldvid", cacheItem{Empty: true})
	require.True(t, response.Empty)
	require.Nil(t, response.Renderer)
}
