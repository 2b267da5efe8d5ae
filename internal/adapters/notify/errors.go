package notify

import "errors"

var (
	// ErrDeliveryFailed is returned when a notification could not be handed off.
	ErrDeliveryFailed = errors.New("notify: delivery failed")
	// ErrUnknownDriver is returned by New for an unsupported driver name.
	ErrUnknownDriver = errors.New("notify: unknown driver")
)
