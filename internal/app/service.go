// Package service wires the ingestion pipeline and the read path behind
// the operations the HTTP API depends on.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/uranai/internal/adapters/cache"
	"github.com/okian/uranai/internal/adapters/feed"
	"github.com/okian/uranai/internal/adapters/notify"
	"github.com/okian/uranai/internal/adapters/repository"
	"github.com/okian/uranai/internal/domain/calendar"
	"github.com/okian/uranai/internal/domain/dataset"
	"github.com/okian/uranai/internal/domain/model"
	"github.com/okian/uranai/internal/domain/ranking"
	"github.com/okian/uranai/pkg/logger"
	"github.com/okian/uranai/pkg/metrics"
)

// Alert messages sent for each failed run.
const (
	MsgFetchFailed   = "Failed to get the XML file."
	MsgDateFailed    = "Failed to extract the date."
	MsgRankingFailed = "Failed to extract the ranking."
	MsgStoreFailed   = "Failed to store the ranking."
)

// Result describes a completed ingestion run.
type Result struct {
	RunID   string
	Record  model.Record
	Created bool
}

// Service implements the API dependencies for the ranking feed.
type Service struct {
	mu sync.RWMutex

	// Core components
	store      repository.Store
	driver     string
	fetcher    feed.Fetcher
	notifier   notify.Notifier
	resolver   *calendar.Resolver
	cache      cache.Cache[model.Dataset]
	aggregator *dataset.Aggregator

	newRunID func() string

	// State
	started bool

	logger logger.Logger
}

// New constructs a new Service. Unset collaborators fall back to an
// in-memory store, an in-memory cache, a log notifier and the default
// resolver. A fetcher must be supplied before Start.
func New(opts ...Option) *Service {
	s := &Service{
		newRunID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.fetcher == nil {
		return ErrMissingFetcher
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.store == nil {
		s.store = repository.Instrument(repository.NewMemStore())
		s.driver = repository.DriverMemory
	}
	if s.cache == nil {
		s.cache = cache.NewInMemory[model.Dataset]()
	}
	if s.notifier == nil {
		s.notifier = notify.Instrument(notify.NewLogNotifier(s.logger))
	}
	if s.resolver == nil {
		s.resolver = calendar.NewResolver()
	}
	s.aggregator = dataset.New(s.store, s.cache, dataset.WithLogger(s.logger))

	if n, err := s.store.Count(ctx); err == nil {
		metrics.UpdateRecordsTotal(n)
	}

	s.started = true
	s.logger.Info(ctx, "ranking service started",
		logger.String("store", s.driver),
		logger.String("today", s.resolver.TodayKey()),
	)
	return nil
}

// Stop releases the store. It is safe to call more than once.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	if err := s.store.Close(); err != nil {
		s.logger.Warn(context.Background(), "closing store", logger.Error(err))
	}
	s.started = false
	s.logger.Info(context.Background(), "ranking service stopped")
}

func (s *Service) running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// Ingest runs one fetch, validate, persist cycle. A failure at any step
// aborts the run, sends exactly one alert and returns an error wrapping
// the step's sentinel. Re-running on a day already stored is a no-op
// that keeps the first record.
func (s *Service) Ingest(ctx context.Context) (Result, error) {
	if !s.running() {
		return Result{}, ErrNotStarted
	}

	start := time.Now()
	res := Result{RunID: s.newRunID()}
	log := s.logger.Named("ingest")

	outcome, err := s.ingest(ctx, &res)
	metrics.RecordIngestRun(outcome)
	metrics.RecordIngestLatency(float64(time.Since(start).Microseconds()) / 1000)

	if err != nil {
		log.Warn(ctx, "ingestion failed",
			logger.String("run_id", res.RunID),
			logger.String("outcome", outcome),
			logger.Error(err))
		return res, err
	}

	log.Info(ctx, "ingestion finished",
		logger.String("run_id", res.RunID),
		logger.String("date", res.Record.Date),
		logger.String("code", res.Record.Code),
		logger.Bool("created", res.Created),
		logger.Duration("latency", time.Since(start)))
	return res, nil
}

func (s *Service) ingest(ctx context.Context, res *Result) (string, error) {
	doc, err := s.fetcher.Fetch(ctx)
	if err != nil {
		return metrics.OutcomeFetchFailed, s.fail(ctx, res.RunID, ErrFetchFailed, MsgFetchFailed, err)
	}

	date, err := s.resolver.Resolve(doc.Date())
	if err != nil {
		return metrics.OutcomeDateFailed, s.fail(ctx, res.RunID, ErrDateExtractionFailed, MsgDateFailed, err)
	}

	ids, err := doc.ItemIDs()
	if err != nil {
		return metrics.OutcomeRankingFailed, s.fail(ctx, res.RunID, ErrRankingExtractionFailed, MsgRankingFailed, err)
	}
	code, err := ranking.Encode(ids)
	if err != nil {
		return metrics.OutcomeRankingFailed, s.fail(ctx, res.RunID, ErrRankingExtractionFailed, MsgRankingFailed, err)
	}

	rec, created, err := s.store.GetOrInsert(ctx, date, code)
	if err != nil {
		return metrics.OutcomeStoreFailed, s.fail(ctx, res.RunID, ErrStoreFailed, MsgStoreFailed, err)
	}
	res.Record, res.Created = rec, created

	if !created {
		return metrics.OutcomeDuplicate, nil
	}
	s.aggregator.Invalidate(ctx)
	return metrics.OutcomeStored, nil
}

// fail alerts once and wraps cause with kind. Delivery problems are
// logged and never replace the run's own error.
func (s *Service) fail(ctx context.Context, runID string, kind error, message string, cause error) error {
	body := fmt.Sprintf("%s\n\nrun: %s\nerror: %v", message, runID, cause)
	if err := s.notifier.Notify(context.WithoutCancel(ctx), body); err != nil {
		s.logger.Error(ctx, "alert delivery failed",
			logger.String("run_id", runID),
			logger.Error(err))
	}
	return fmt.Errorf("%w: %w", kind, cause)
}

// Dataset returns the full history, from cache when possible.
func (s *Service) Dataset(ctx context.Context) (model.Dataset, error) {
	if !s.running() {
		return nil, ErrNotStarted
	}
	ds, err := s.aggregator.Get(ctx)
	if err != nil {
		metrics.RecordErrorByComponent("dataset", "build")
		return nil, fmt.Errorf("%w: %w", ErrDatasetUnavailable, err)
	}
	return ds, nil
}

// Ping reports whether the store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	if !s.running() {
		return ErrNotStarted
	}
	return s.store.Ping(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started": s.started,
		"store":   s.driver,
	}
	if !s.started {
		return stats
	}

	stats["today"] = s.resolver.TodayKey()
	if n, err := s.store.Count(ctx); err == nil {
		stats["records"] = n
		metrics.UpdateRecordsTotal(n)
	} else {
		stats["storeError"] = err.Error()
	}
	if sized, ok := s.cache.(interface{ Len() int }); ok {
		stats["cacheEntries"] = sized.Len()
	}
	if f, ok := s.fetcher.(interface{ URL() string }); ok {
		stats["feedURL"] = f.URL()
	}
	return stats
}
