package ranking

import "errors"

// Sentinel kinds for ranking errors.
var (
	ErrInvalidPermutation = errors.New("invalid permutation")
	ErrInvalidCode        = errors.New("invalid ranking code")
)
