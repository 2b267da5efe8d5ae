// Package feed retrieves and decodes the upstream daily ranking document.
package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okian/uranai/pkg/logger"
	"github.com/okian/uranai/pkg/metrics"
)

const (
	defaultTimeout = 10 * time.Second
	defaultMaxBody = 1 << 20
)

// Fetcher retrieves the current ranking document.
type Fetcher interface {
	Fetch(ctx context.Context) (*Document, error)
}

// HTTPFetcher fetches the document with a plain GET.
type HTTPFetcher struct {
	url     string
	client  *http.Client
	timeout time.Duration
	maxBody int64
	logger  logger.Logger
}

// NewHTTPFetcher creates a fetcher for url.
func NewHTTPFetcher(url string, opts ...Option) *HTTPFetcher {
	f := &HTTPFetcher{
		url:     url,
		client:  &http.Client{},
		timeout: defaultTimeout,
		maxBody: defaultMaxBody,
		logger:  logger.Discard(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// URL returns the upstream address.
func (f *HTTPFetcher) URL() string { return f.url }

// Fetch performs one GET and parses the body. There is no retry.
func (f *HTTPFetcher) Fetch(ctx context.Context) (*Document, error) {
	start := time.Now()
	doc, result, err := f.fetch(ctx)
	metrics.RecordFeedFetch(result)
	metrics.RecordFeedFetchLatency(float64(time.Since(start).Nanoseconds()) / 1e6)
	if err != nil {
		f.logger.Warn(ctx, "feed fetch failed",
			logger.String("url", f.url),
			logger.String("result", result),
			logger.Error(err))
		return nil, err
	}
	f.logger.Debug(ctx, "feed fetched",
		logger.String("url", f.url),
		logger.Int("items", len(doc.Items)),
		logger.Duration("latency", time.Since(start)))
	return doc, nil
}

func (f *HTTPFetcher) fetch(ctx context.Context) (*Document, string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, "request_error", fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "transport_error", fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, f.maxBody))
		return nil, "bad_status", fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	doc, err := Parse(io.LimitReader(resp.Body, f.maxBody))
	if err != nil {
		return nil, "malformed", err
	}
	return doc, "ok", nil
}
