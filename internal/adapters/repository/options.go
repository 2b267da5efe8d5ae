package repository

import (
	"time"

	"github.com/okian/uranai/pkg/logger"
)

const defaultBusyTimeout = 5 * time.Second

// options holds backend tuning shared by all drivers.
type options struct {
	busyTimeout time.Duration
	logger      logger.Logger
}

func newOptions(opts []Option) options {
	o := options{busyTimeout: defaultBusyTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Option applies a configuration option to a store backend.
type Option func(*options)

// WithBusyTimeout sets how long a backend waits for a file lock.
func WithBusyTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.busyTimeout = d
		}
	}
}

// WithLogger sets the logger used by Open.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
