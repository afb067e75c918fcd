package store

import "log/slog"

// Option configures a Store.
type Option func(*config)

type config struct {
	name        string
	logger      *slog.Logger
	watchBuffer int
}

// WithName sets the workflow name used in log records.
func WithName(name string) Option {
	return func(c *config) {
		if name != "" {
			c.name = name
		}
	}
}

// WithLogger sets the logger used to trace transitions. Nil is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithWatchBuffer sets the channel buffer size for Watch subscribers.
func WithWatchBuffer(n int) Option {
	return func(c *config) {
		c.watchBuffer = max(n, 1)
	}
}
