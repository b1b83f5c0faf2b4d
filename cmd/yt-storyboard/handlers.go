package main

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/doingodswork/yt-storyboard/pkg/storyboard"
)

type storyboardResponse struct {
	VideoID string `json:"videoId"`
	// Empty marks a video that's confirmed to have no storyboard, as opposed
	// to a 404, which means the resolution failed.
	Empty    bool                 `json:"empty,omitempty"`
	Renderer *storyboard.Renderer `json:"renderer,omitempty"`
}

func createStoryboardHandler(sbClient *storyboard.Client, cache resolutionCache, cacheAge time.Duration, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		videoID := c.Params("videoID")
		if videoID == "" {
			return c.SendStatus(fiber.StatusBadRequest)
		}
		zapFieldVideoID := zap.String("videoID", videoID)

		// Check cache first
		item, found, err := cache.Get(c.Context(), videoID)
		if err != nil {
			logger.Error("Couldn't get cached resolution", zap.Error(err), zapFieldVideoID)
		} else if !found {
			logger.Debug("Resolution not found in cache", zapFieldVideoID)
		} else if time.Since(item.Created) > cacheAge {
			expiredSince := time.Since(item.Created.Add(cacheAge))
			logger.Debug("Hit cache for resolution, but item is expired", zap.Duration("expiredSince", expiredSince), zapFieldVideoID)
		} else {
			logger.Debug("Hit cache for resolution, returning result", zapFieldVideoID)
			return c.JSON(responseFromItem(videoID, item))
		}

		res := sbClient.Resolve(c.Context(), videoID)
		switch res.Kind {
		case storyboard.Resolved:
			newItem := cacheItem{Renderer: res.Renderer, Created: time.Now()}
			if err := cache.Set(c.Context(), videoID, newItem); err != nil {
				logger.Error("Couldn't cache resolution", zap.Error(err), zapFieldVideoID)
			}
			return c.JSON(responseFromItem(videoID, newItem))
		case storyboard.ConfirmedEmpty:
			newItem := cacheItem{Empty: true, Created: time.Now()}
			if err := cache.Set(c.Context(), videoID, newItem); err != nil {
				logger.Error("Couldn't cache resolution", zap.Error(err), zapFieldVideoID)
			}
			return c.JSON(responseFromItem(videoID, newItem))
		default:
			logger.Warn("Couldn't resolve storyboard", zap.Error(res.Err), zapFieldVideoID)
			return c.SendStatus(fiber.StatusNotFound)
		}
	}
}

func responseFromItem(videoID string, item cacheItem) storyboardResponse {
	response := storyboardResponse{
		VideoID: videoID,
		Empty:   item.Empty,
	}
	if !item.Empty {
		renderer := item.Renderer
		response.Renderer = &renderer
	}
	return response
}

func createHealthHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendString("OK")
	}
}
