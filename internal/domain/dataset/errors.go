package dataset

import "errors"

// Sentinel kinds for dataset errors.
var (
	ErrSourceUnavailable = errors.New("record source unavailable")
	ErrCorruptRecord     = errors.New("stored record cannot be decoded")
)
