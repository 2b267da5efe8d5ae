package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/okian/uranai/internal/domain/model"
	"github.com/okian/uranai/pkg/logger"
	"github.com/okian/uranai/pkg/metrics"
)

// Supported store drivers.
const (
	DriverMemory   = "memory"
	DriverBolt     = "bolt"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Drivers lists every supported driver name.
var Drivers = []string{DriverMemory, DriverBolt, DriverSQLite, DriverPostgres}

// Settings selects and locates a backend.
type Settings struct {
	Driver string // memory, bolt, sqlite or postgres
	Path   string // file path for bolt and sqlite
	DSN    string // connection string for postgres
}

// Open builds the configured backend wrapped with latency metrics.
func Open(ctx context.Context, settings Settings, opts ...Option) (Store, error) {
	o := newOptions(opts)

	var (
		store Store
		err   error
	)
	driver := strings.ToLower(strings.TrimSpace(settings.Driver))
	switch driver {
	case DriverMemory:
		store = NewMemStore()
	case DriverBolt:
		store, err = OpenBolt(settings.Path, opts...)
	case DriverSQLite:
		store, err = OpenSQLite(ctx, settings.Path, opts...)
	case DriverPostgres:
		store, err = OpenPostgres(ctx, settings.DSN)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, settings.Driver)
	}
	if err != nil {
		return nil, err
	}

	if o.logger != nil {
		o.logger.Info(ctx, "record store opened",
			logger.String("driver", driver),
			logger.String("path", settings.Path),
		)
	}
	return Instrument(store), nil
}

// instrumented records latency and size metrics around a Store.
type instrumented struct {
	Store
}

// Instrument wraps s so every call is observed in pkg/metrics.
func Instrument(s Store) Store {
	if _, ok := s.(*instrumented); ok {
		return s
	}
	return &instrumented{Store: s}
}

func (s *instrumented) GetOrInsert(ctx context.Context, date, code string) (model.Record, bool, error) {
	start := time.Now()
	rec, created, err := s.Store.GetOrInsert(ctx, date, code)
	metrics.RecordRepositoryUpdateLatency(sinceMs(start))
	if err != nil {
		metrics.RecordErrorByComponent("repository", "insert")
		return rec, created, err
	}
	if created {
		metrics.RecordRecordInserted()
	}
	return rec, created, nil
}

func (s *instrumented) All(ctx context.Context) ([]model.Record, error) {
	start := time.Now()
	records, err := s.Store.All(ctx)
	metrics.RecordRepositoryQueryLatency(sinceMs(start))
	if err != nil {
		metrics.RecordErrorByComponent("repository", "list")
		return nil, err
	}
	metrics.UpdateRecordsTotal(len(records))
	return records, nil
}

func sinceMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
