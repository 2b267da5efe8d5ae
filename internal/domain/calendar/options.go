package calendar

import "time"

// Option applies a configuration option to the Resolver.
type Option func(*Resolver)

// WithClock overrides the wall clock used to compute today.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		if now != nil {
			r.now = now
		}
	}
}

// WithOffset sets the feed's fixed UTC offset.
func WithOffset(offset time.Duration) Option {
	return func(r *Resolver) {
		r.loc = time.FixedZone(zoneName(offset), int(offset/time.Second))
	}
}
