package pubsub

import "errors"

var (
	// ErrUnknownLogLevel is returned by [Config.Validate] for a level slog does not know.
	ErrUnknownLogLevel = errors.New("pubsub: unknown log level")
)
