package pubsub

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

const defaultName = "default"

// Config holds the settings of a hub that can come from configuration
// sources. It is tagged for [github.com/erlorenz/go-hub/cfgx].
type Config struct {
	// Name identifies the hub in log records.
	Name string `default:"default" desc:"Hub name used in log records"`
	// LogLevel is the minimum level logged: debug, info, warn or error.
	LogLevel string `default:"warn" desc:"Minimum log level (debug, info, warn, error)"`
}

// DefaultConfig returns the configuration used when no source provides one.
func DefaultConfig() Config {
	return Config{
		Name:     defaultName,
		LogLevel: "warn",
	}
}

// Validate checks that the configuration can be applied.
func (c Config) Validate() error {
	if _, err := c.level(); err != nil {
		return err
	}
	return nil
}

func (c Config) level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknownLogLevel, c.LogLevel)
	}
	return lvl, nil
}

// Option configures a Hub.
type Option func(*Hub)

// WithName sets the name the hub logs under.
// Default: "default"
func WithName(name string) Option {
	return func(h *Hub) {
		if name != "" {
			h.name = name
		}
	}
}

// WithLogger sets the logger for debug records about subscriptions and dispatch.
// Default: slog.Default()
func WithLogger(logger *slog.Logger) Option {
	return func(h *Hub) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithConfig applies cfg: the name, and a text logger on stderr at cfg.LogLevel.
// An unknown level falls back to warn; call [Config.Validate] first to catch it.
func WithConfig(cfg Config) Option {
	return func(h *Hub) {
		lvl, err := cfg.level()
		if err != nil {
			lvl = slog.LevelWarn
		}

		WithName(cfg.Name)(h)
		h.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	}
}
