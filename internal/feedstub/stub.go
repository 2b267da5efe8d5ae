// Package feedstub serves a synthetic daily ranking feed for local runs and tests.
package feedstub

import (
	"bytes"
	"context"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/uranai/internal/adapters/feed"
	"github.com/okian/uranai/internal/domain/ranking"
	"github.com/okian/uranai/pkg/logger"
	"golang.org/x/text/encoding/japanese"
)

// Server is an http.Handler serving one feed document per request.
type Server struct {
	mu       sync.RWMutex
	now      func() time.Time
	loc      *time.Location
	order    []int
	dayShift int
	omitDate bool
	encoding string
	status   int

	hits atomic.Int64
}

// New creates a stub serving today's date in +09:00 and the identity order.
func New(opts ...Option) *Server {
	s := &Server{
		now:      time.Now,
		loc:      time.FixedZone("feed", 9*60*60),
		order:    Identity(),
		encoding: EncodingUTF8,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Identity returns 1..12 in order.
func Identity() []int {
	ids := make([]int, ranking.Signs)
	for i := range ids {
		ids[i] = i + 1
	}
	return ids
}

// Permutation returns a shuffle of 1..12 determined by seed.
func Permutation(seed uint64) []int {
	ids := Identity()
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	return ids
}

// DateText formats t the way the feed does, e.g. 5月3日.
func DateText(t time.Time) string {
	return fmt.Sprintf("%d月%d日", int(t.Month()), t.Day())
}

// SetOrder swaps the served ids.
func (s *Server) SetOrder(ids []int) {
	s.mu.Lock()
	s.order = append([]int(nil), ids...)
	s.mu.Unlock()
}

// Order returns a copy of the served ids.
func (s *Server) Order() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]int(nil), s.order...)
}

// Hits returns how many requests were served.
func (s *Server) Hits() int64 { return s.hits.Load() }

// Document builds the document the next request would receive.
func (s *Server) Document() *feed.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	day := s.now().In(s.loc).AddDate(0, 0, s.dayShift)
	doc := feed.NewDocument(DateText(day), s.order)
	if s.omitDate {
		doc.DateText = nil
	}
	return doc
}

// ServeHTTP writes the current document.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.hits.Add(1)
	if s.status != 0 && s.status != http.StatusOK {
		http.Error(w, http.StatusText(s.status), s.status)
		return
	}

	body, err := s.render()
	if err != nil {
		logger.Get().Error(r.Context(), "feedstub render failed", logger.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	_, _ = w.Write(body)
}

func (s *Server) render() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := s.Document().WriteTo(&buf); err != nil {
		return nil, err
	}
	if s.encoding != EncodingShiftJIS {
		return buf.Bytes(), nil
	}
	utf8 := strings.Replace(buf.String(), `encoding="UTF-8"`, `encoding="Shift_JIS"`, 1)
	out, err := japanese.ShiftJIS.NewEncoder().String(utf8)
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}

// ListenAndServe serves the stub on addr at /uranai.xml until ctx ends.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/uranai.xml", s)

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	logger.Get().Info(ctx, "feed stub listening",
		logger.String("addr", addr),
		logger.Any("order", s.Order()))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
