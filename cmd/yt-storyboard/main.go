package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/doingodswork/yt-storyboard/pkg/storyboard"
	"github.com/doingodswork/yt-storyboard/pkg/videotype"
)

const version = "0.1.0"

// zapNotifier stands in for the player's toast overlay: user-visible failure
// reports end up in the log at WARN level.
type zapNotifier struct {
	logger *zap.Logger
}

func (n zapNotifier) Report(message string, cause error) {
	if cause != nil {
		n.logger.Warn(message, zap.Error(cause))
		return
	}
	n.logger.Warn(message)
}

func main() {
	mainCtx := context.Background()

	// Bootstrap logger for the config parsing, replaced by the configured one right after
	logger, err := newLogger("debug", "console")
	if err != nil {
		log.Fatalf("Couldn't create bootstrap logger: %v", err)
	}
	config := parseConfig(logger)
	logger, err = newLogger(config.LogLevel, config.LogEncoding)
	if err != nil {
		log.Fatalf("Couldn't create logger: %v", err)
	}
	defer logger.Sync()
	logger.Info("Starting yt-storyboard", zap.String("version", version))

	var cache resolutionCache
	if config.RedisAddr != "" {
		redisOpts := &redis.Options{
			Addr: config.RedisAddr,
		}
		if config.RedisCreds != "" {
			if creds := strings.SplitN(config.RedisCreds, ":", 2); len(creds) == 2 {
				redisOpts.Username = creds[0]
				redisOpts.Password = creds[1]
			} else {
				redisOpts.Password = config.RedisCreds
			}
		}
		rdb := redis.NewClient(redisOpts)
		if err := rdb.Ping(mainCtx).Err(); err != nil {
			logger.Fatal("Couldn't ping Redis", zap.Error(err), zap.String("redisAddr", config.RedisAddr))
		}
		cache = newRedisCache(rdb, config.CacheAge)
		logger.Info("Using Redis resolution cache", zap.String("redisAddr", config.RedisAddr))
	} else {
		cache = newMemoryCache(config.CacheAge)
		logger.Info("Using in-memory resolution cache")
	}

	typeCell := videotype.NewCell()
	typeCell.Subscribe(func(previous, current videotype.Kind) {
		logger.Debug("Video type changed", zap.Stringer("previous", previous), zap.Stringer("current", current))
	})

	sbOpts := storyboard.NewClientOpts(config.BaseURL, config.Timeout)
	sbClient, err := storyboard.NewClient(sbOpts, zapNotifier{logger: logger}, typeCell, logger)
	if err != nil {
		logger.Fatal("Couldn't create storyboard client", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	app.Get("/health", createHealthHandler())
	app.Get("/v1/storyboard/:videoID", createStoryboardHandler(sbClient, cache, config.CacheAge, logger))

	addr := config.BindAddr + ":" + strconv.Itoa(config.Port)
	go func() {
		if err := app.Listen(addr); err != nil {
			logger.Fatal("Couldn't start server", zap.Error(err))
		}
	}()
	logger.Info("Server started", zap.String("address", addr))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("Received signal, shutting down server...", zap.String("signal", sig.String()))
	if err := app.Shutdown(); err != nil {
		logger.Error("Error shutting down server", zap.Error(err))
	}
	logger.Info("Finished shutting down server")
}
