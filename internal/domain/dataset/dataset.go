// Package dataset builds the full ranking history served to readers and
// memoizes it in a cache until the next write.
package dataset

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/uranai/internal/domain/calendar"
	"github.com/okian/uranai/internal/domain/model"
	"github.com/okian/uranai/internal/domain/ranking"
	"github.com/okian/uranai/pkg/logger"
	"github.com/okian/uranai/pkg/metrics"
	"golang.org/x/sync/singleflight"
)

// DefaultKey is the cache key holding the dataset.
const DefaultKey = "data"

// Source lists every stored record ordered by date ascending.
type Source interface {
	All(ctx context.Context) ([]model.Record, error)
}

// Cache is the subset of cache operations the aggregator needs.
type Cache interface {
	Get(ctx context.Context, key string) (model.Dataset, bool)
	Put(ctx context.Context, key string, v model.Dataset)
	InvalidateAll(ctx context.Context)
}

// Aggregator returns the memoized dataset or rebuilds it from the source.
type Aggregator struct {
	source Source
	cache  Cache
	key    string
	group  singleflight.Group
	logger logger.Logger

	// mu orders a flight's Put against Invalidate; gen counts invalidations.
	mu  sync.Mutex
	gen atomic.Uint64
}

// New creates an Aggregator over source, memoizing into c.
func New(source Source, c Cache, opts ...Option) *Aggregator {
	a := &Aggregator{
		source: source,
		cache:  c,
		key:    DefaultKey,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Get returns the dataset, rebuilding it on a cache miss.
// Concurrent misses share a single rebuild; each caller waits on its own ctx.
func (a *Aggregator) Get(ctx context.Context) (model.Dataset, error) {
	if ds, ok := a.cache.Get(ctx, a.key); ok {
		return ds, nil
	}

	ch := a.group.DoChan(a.key, func() (interface{}, error) {
		return a.rebuild(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(model.Dataset), nil
	}
}

// rebuild scans the source and caches the result unless an invalidation
// happened while the scan was running.
func (a *Aggregator) rebuild(ctx context.Context) (model.Dataset, error) {
	gen := a.gen.Load()
	ds, err := a.build(ctx)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.gen.Load() != gen {
		if a.logger != nil {
			a.logger.Debug(ctx, "dataset rebuilt from a stale scan, not cached")
		}
		return ds, nil
	}
	a.cache.Put(ctx, a.key, ds)
	return ds, nil
}

// Invalidate flushes the whole cache, not just the dataset key. A rebuild
// already in flight will not repopulate the cache, and later readers start
// a fresh one.
func (a *Aggregator) Invalidate(ctx context.Context) {
	a.mu.Lock()
	a.gen.Add(1)
	a.cache.InvalidateAll(ctx)
	a.group.Forget(a.key)
	a.mu.Unlock()
	if a.logger != nil {
		a.logger.Debug(ctx, "dataset cache flushed")
	}
}

func (a *Aggregator) build(ctx context.Context) (model.Dataset, error) {
	start := time.Now()
	records, err := a.source.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}

	ds, err := Build(records)
	if err != nil {
		return nil, err
	}

	metrics.RecordDatasetBuildLatency(float64(time.Since(start).Microseconds()) / 1000)
	if a.logger != nil {
		a.logger.Debug(ctx, "dataset rebuilt", logger.Int("rows", len(ds)))
	}
	return ds, nil
}

// Build decodes records into rows, preserving their order.
func Build(records []model.Record) (model.Dataset, error) {
	ds := make(model.Dataset, 0, len(records))
	for _, rec := range records {
		row, err := decode(rec)
		if err != nil {
			return nil, err
		}
		ds = append(ds, row)
	}
	return ds, nil
}

func decode(rec model.Record) (model.Row, error) {
	year, month, day, err := calendar.ParseKey(rec.Date)
	if err != nil {
		return model.Row{}, fmt.Errorf("%w: %w", ErrCorruptRecord, err)
	}
	ranks, err := ranking.Ranks(rec.Code)
	if err != nil {
		return model.Row{}, fmt.Errorf("%w: %s: %w", ErrCorruptRecord, rec.Date, err)
	}
	return model.Row{Year: year, Month: month, Day: day, Ranks: ranks}, nil
}
