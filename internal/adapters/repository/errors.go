package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrInvalidRecord = errors.New("invalid ranking record")
	ErrUnknownDriver = errors.New("unknown store driver")
	ErrClosed        = errors.New("store closed")
)
