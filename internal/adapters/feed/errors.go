package feed

import "errors"

var (
	// ErrUnexpectedStatus is returned when the upstream answers with a non-200 status.
	ErrUnexpectedStatus = errors.New("feed: unexpected status")
	// ErrRequestFailed is returned when the document could not be retrieved.
	ErrRequestFailed = errors.New("feed: request failed")
	// ErrMalformedDocument is returned when the body is not a ranking document.
	ErrMalformedDocument = errors.New("feed: malformed document")
	// ErrInvalidItem is returned when an item identifier is not an integer.
	ErrInvalidItem = errors.New("feed: invalid item identifier")
)
