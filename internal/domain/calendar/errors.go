package calendar

import "errors"

// Sentinel kinds for calendar errors.
var (
	// ErrStaleOrMismatchedDate covers a missing, malformed, or non-today feed date.
	ErrStaleOrMismatchedDate = errors.New("feed date is missing or not today")
	ErrInvalidDateKey        = errors.New("invalid date key")
)
