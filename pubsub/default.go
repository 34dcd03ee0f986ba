package pubsub

import (
	"log/slog"
	"sync"

	"github.com/erlorenz/go-hub/cfgx"
)

// EnvPrefix prefixes the environment variables read for the default hub,
// e.g. PUBSUB_NAME and PUBSUB_LOG_LEVEL.
const EnvPrefix = "PUBSUB"

var defaultHub = sync.OnceValue(func() *Hub {
	cfg, err := LoadConfig()
	if err != nil {
		slog.Warn("pubsub: using default hub config", slog.Any("error", err))
		cfg = DefaultConfig()
	}
	return New(WithConfig(cfg))
})

// Default returns the process-wide hub. It is created on the first call, with
// its [Config] read from the environment, and is never torn down.
//
// Code that wants isolation, tests in particular, should create its own hub
// with [New] instead.
func Default() *Hub {
	return defaultHub()
}

// LoadConfig reads a [Config] from struct-tag defaults and PUBSUB_* variables.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := cfgx.Parse(&cfg, cfgx.Options{SkipFlags: true, EnvPrefix: EnvPrefix}); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
