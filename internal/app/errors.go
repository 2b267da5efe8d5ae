package service

import "errors"

// Ingestion outcomes. Each one ends the run and triggers one notification.
var (
	ErrFetchFailed             = errors.New("fetch failed")
	ErrDateExtractionFailed    = errors.New("date extraction failed")
	ErrRankingExtractionFailed = errors.New("ranking extraction failed")
	ErrStoreFailed             = errors.New("store failed")
)

var (
	// ErrDatasetUnavailable is returned when the history cannot be built.
	ErrDatasetUnavailable = errors.New("dataset unavailable")
	// ErrNotStarted is returned by operations called before Start.
	ErrNotStarted = errors.New("service not started")
	// ErrMissingFetcher is returned by Start when no feed fetcher was configured.
	ErrMissingFetcher = errors.New("no feed fetcher configured")
)
