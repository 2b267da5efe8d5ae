package dataset

import "github.com/okian/uranai/pkg/logger"

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithKey sets the cache key the dataset is stored under.
func WithKey(key string) Option {
	return func(a *Aggregator) {
		if key != "" {
			a.key = key
		}
	}
}

// WithLogger sets a custom logger for the aggregator.
func WithLogger(l logger.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.logger = l
		}
	}
}
