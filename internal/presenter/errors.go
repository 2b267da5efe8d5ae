package presenter

import "errors"

// ErrInvalidCallback is returned for callback names outside the allowed identifier set.
var ErrInvalidCallback = errors.New("presenter: invalid callback name")
