// Package calendar resolves the feed's self-reported day against today
// in the feed's publication timezone.
package calendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// DefaultOffset is the feed's publication timezone (JST).
	DefaultOffset = 9 * time.Hour

	// monthSeparator splits "<month>月<day>日".
	monthSeparator = "月"

	keyLayout = "20060102"
	keyLength = len(keyLayout)
)

// Resolver turns feed date text into a record key for today.
type Resolver struct {
	now func() time.Time
	loc *time.Location
}

// NewResolver creates a Resolver using the wall clock and DefaultOffset.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		now: time.Now,
		loc: time.FixedZone(zoneName(DefaultOffset), int(DefaultOffset/time.Second)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Today returns the current time in the feed's timezone.
func (r *Resolver) Today() time.Time {
	return r.now().In(r.loc)
}

// TodayKey returns today's record key in the feed's timezone.
func (r *Resolver) TodayKey() string {
	return r.Today().Format(keyLayout)
}

// Resolve parses text such as "5月3日" and returns today's key when the
// month and day match today. present=false means the feed had no date.
func (r *Resolver) Resolve(text string, present bool) (string, error) {
	if !present {
		return "", fmt.Errorf("%w: date field missing", ErrStaleOrMismatchedDate)
	}
	month, day, err := parseMonthDay(text)
	if err != nil {
		return "", err
	}

	today := r.Today()
	if month != int(today.Month()) || day != today.Day() {
		return "", fmt.Errorf("%w: feed is for %d/%d, today is %d/%d",
			ErrStaleOrMismatchedDate, month, day, int(today.Month()), today.Day())
	}
	return fmt.Sprintf("%d%02d%02d", today.Year(), month, day), nil
}

// parseMonthDay drops the trailing unit rune and splits on the month glyph.
func parseMonthDay(text string) (int, int, error) {
	text = strings.TrimSpace(text)
	_, size := utf8.DecodeLastRuneInString(text)
	if size == 0 {
		return 0, 0, fmt.Errorf("%w: empty date", ErrStaleOrMismatchedDate)
	}
	parts := strings.Split(text[:len(text)-size], monthSeparator)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: malformed date %q", ErrStaleOrMismatchedDate, text)
	}
	month, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: malformed month in %q", ErrStaleOrMismatchedDate, text)
	}
	day, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: malformed day in %q", ErrStaleOrMismatchedDate, text)
	}
	return month, day, nil
}

// ParseKey splits an 8-digit YYYYMMDD key into its parts.
func ParseKey(key string) (year, month, day int, err error) {
	if len(key) != keyLength {
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidDateKey, key)
	}
	for i := 0; i < keyLength; i++ {
		if key[i] < '0' || key[i] > '9' {
			return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidDateKey, key)
		}
	}
	t, perr := time.Parse(keyLayout, key)
	if perr != nil {
		return 0, 0, 0, fmt.Errorf("%w: %q: %v", ErrInvalidDateKey, key, perr)
	}
	return t.Year(), int(t.Month()), t.Day(), nil
}

// ValidKey reports whether key is a real calendar date in YYYYMMDD form.
func ValidKey(key string) bool {
	_, _, _, err := ParseKey(key)
	return err == nil
}

func zoneName(offset time.Duration) string {
	if offset == DefaultOffset {
		return "JST"
	}
	return fmt.Sprintf("UTC%+d", int(offset/time.Hour))
}
