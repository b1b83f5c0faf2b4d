package main

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

type config struct {
	BindAddr    string        `json:"bindAddr"`
	Port        int           `json:"port"`
	BaseURL     string        `json:"baseURL"`
	Timeout     time.Duration `json:"timeout"`
	CacheAge    time.Duration `json:"cacheAge"`
	RedisAddr   string        `json:"redisAddr"`
	RedisCreds  string        `json:"redisCreds"`
	LogLevel    string        `json:"logLevel"`
	LogEncoding string        `json:"logEncoding"`
	EnvPrefix   string        `json:"envPrefix"`
}

func parseConfig(logger *zap.Logger) config {
	result := config{}

	// Flags
	var (
		bindAddr    = flag.String("bindAddr", "localhost", `Local interface address to bind to. "localhost" only allows access from the local host. "0.0.0.0" binds to all network interfaces.`)
		port        = flag.Int("port", 8080, "Port to listen on")
		baseURL     = flag.String("baseURL", "https://youtubei.googleapis.com", "Base URL of the innertube API")
		timeout     = flag.Duration("timeout", 5*time.Second, "Timeout for a single player response request. The format must be acceptable by Go's 'time.ParseDuration()', for example \"5s\".")
		cacheAge    = flag.Duration("cacheAge", 24*time.Hour, "Max age of cached storyboard resolutions. The format must be acceptable by Go's 'time.ParseDuration()', for example \"24h\".")
		redisAddr   = flag.String("redisAddr", "", `Redis host and port, for example "localhost:6379". It's used for the storyboard resolution cache. Keep empty to use in-memory go-cache.`)
		redisCreds  = flag.String("redisCreds", "", `Credentials for Redis. Password for Redis version 5 and older, username and password for Redis version 6 and newer. Use the colon character (":") for separating username and password.`)
		logLevel    = flag.String("logLevel", "debug", `Log level to show only logs with the given and more severe levels. Can be "debug", "info", "warn", "error".`)
		logEncoding = flag.String("logEncoding", "console", `Log encoding. Can be "console" or "json", where "json" makes more sense when using centralized logging solutions like ELK, Graylog or Loki.`)
		envPrefix   = flag.String("envPrefix", "", "Prefix for environment variables")
	)

	flag.Parse()

	if *envPrefix != "" && !strings.HasSuffix(*envPrefix, "_") {
		*envPrefix += "_"
	}
	result.EnvPrefix = *envPrefix

	// Only overwrite the values by their env var counterparts that have not been set (and that *are* set via env var).
	var err error
	if !isArgSet("bindAddr") {
		if val, ok := os.LookupEnv(*envPrefix + "BIND_ADDR"); ok {
			*bindAddr = val
		}
	}
	result.BindAddr = *bindAddr

	if !isArgSet("port") {
		if val, ok := os.LookupEnv(*envPrefix + "PORT"); ok {
			if *port, err = strconv.Atoi(val); err != nil {
				logger.Fatal("Couldn't convert environment variable from string to int", zap.Error(err), zap.String("envVar", "PORT"))
			}
		}
	}
	result.Port = *port

	if !isArgSet("baseURL") {
		if val, ok := os.LookupEnv(*envPrefix + "BASE_URL"); ok {
			*baseURL = val
		}
	}
	result.BaseURL = *baseURL

	if !isArgSet("timeout") {
		if val, ok := os.LookupEnv(*envPrefix + "TIMEOUT"); ok {
			if *timeout, err = time.ParseDuration(val); err != nil {
				logger.Fatal("Couldn't convert environment variable from string to time.Duration", zap.Error(err), zap.String("envVar", "TIMEOUT"))
			}
		}
	}
	result.Timeout = *timeout

	if !isArgSet("cacheAge") {
		if val, ok := os.LookupEnv(*envPrefix + "CACHE_AGE"); ok {
			if *cacheAge, err = time.ParseDuration(val); err != nil {
				logger.Fatal("Couldn't convert environment variable from string to time.Duration", zap.Error(err), zap.String("envVar", "CACHE_AGE"))
			}
		}
	}
	result.CacheAge = *cacheAge

	if !isArgSet("redisAddr") {
		if val, ok := os.LookupEnv(*envPrefix + "REDIS_ADDR"); ok {
			*redisAddr = val
		}
	}
	result.RedisAddr = *redisAddr

	if !isArgSet("redisCreds") {
		if val, ok := os.LookupEnv(*envPrefix + "REDIS_CREDS"); ok {
			*redisCreds = val
		}
	}
	result.RedisCreds = *redisCreds

	if !isArgSet("logLevel") {
		if val, ok := os.LookupEnv(*envPrefix + "LOG_LEVEL"); ok {
			*logLevel = val
		}
	}
	result.LogLevel = *logLevel

	if !isArgSet("logEncoding") {
		if val, ok := os.LookupEnv(*envPrefix + "LOG_ENCODING"); ok {
			*logEncoding = val
		}
	}
	result.LogEncoding = *logEncoding

	return result
}

// isArgSet returns true if the argument you're looking for is actually set as command line argument.
// Pass without "-" prefix.
func isArgSet(arg string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == arg {
			found = true
		}
	})
	return found
}
