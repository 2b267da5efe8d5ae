package service

import (
	"github.com/okian/uranai/internal/adapters/cache"
	"github.com/okian/uranai/internal/adapters/feed"
	"github.com/okian/uranai/internal/adapters/notify"
	"github.com/okian/uranai/internal/adapters/repository"
	"github.com/okian/uranai/internal/domain/calendar"
	"github.com/okian/uranai/internal/domain/model"
	"github.com/okian/uranai/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore sets the record store and the driver name reported in stats.
// The service owns the store and closes it on Stop.
func WithStore(store repository.Store, driver string) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
			s.driver = driver
		}
	}
}

// WithFetcher sets the upstream feed fetcher.
func WithFetcher(f feed.Fetcher) Option {
	return func(s *Service) {
		if f != nil {
			s.fetcher = f
		}
	}
}

// WithNotifier sets where failure alerts go.
func WithNotifier(n notify.Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithResolver sets the date resolver.
func WithResolver(r *calendar.Resolver) Option {
	return func(s *Service) {
		if r != nil {
			s.resolver = r
		}
	}
}

// WithCache sets the dataset cache.
func WithCache(c cache.Cache[model.Dataset]) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithRunIDs overrides run ID generation.
func WithRunIDs(next func() string) Option {
	return func(s *Service) {
		if next != nil {
			s.newRunID = next
		}
	}
}
