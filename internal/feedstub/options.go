package feedstub

import "time"

// Encodings the stub can serve.
const (
	EncodingUTF8     = "utf-8"
	EncodingShiftJIS = "shift_jis"
)

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithClock overrides the wall clock used to date the document.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// WithOffset sets the publication timezone as a fixed UTC offset.
func WithOffset(offset time.Duration) Option {
	return func(s *Server) {
		s.loc = time.FixedZone("feed", int(offset/time.Second))
	}
}

// WithSeed draws the served permutation from a seeded generator.
func WithSeed(seed uint64) Option {
	return func(s *Server) {
		s.order = Permutation(seed)
	}
}

// WithOrder serves ids exactly as given, valid or not.
func WithOrder(ids []int) Option {
	return func(s *Server) {
		if ids != nil {
			s.order = append([]int(nil), ids...)
		}
	}
}

// WithDayShift dates the document days away from today; non-zero makes it stale.
func WithDayShift(days int) Option {
	return func(s *Server) { s.dayShift = days }
}

// WithoutDate omits the date element.
func WithoutDate() Option {
	return func(s *Server) { s.omitDate = true }
}

// WithEncoding selects utf-8 or shift_jis output.
func WithEncoding(enc string) Option {
	return func(s *Server) {
		if enc != "" {
			s.encoding = enc
		}
	}
}

// WithStatus answers every request with code and no document.
func WithStatus(code int) Option {
	return func(s *Server) { s.status = code }
}
