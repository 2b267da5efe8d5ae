// Package ranking converts a day's sign ordering into its canonical code.
//
// The code is an inverse permutation: the digit at index j-1 holds the
// rank (1..12, lowercase hex) that sign j finished at on that day.
package ranking

import (
	"fmt"
	"strconv"
)

// Signs is the number of ranked signs in a feed.
const Signs = 12

// SignCodes are the three-letter sign identifiers in canonical order.
// SignCodes[j-1] names sign j.
var SignCodes = [Signs]string{
	"ari", "tau", "gem", "cnc", "leo", "vir",
	"lib", "sco", "sgr", "cap", "aqr", "psc",
}

// Encode validates ids as a permutation of 1..12 and returns its code.
// ids[i] is the sign that finished at rank i+1.
func Encode(ids []int) (string, error) {
	if len(ids) != Signs {
		return "", fmt.Errorf("%w: got %d identifiers, want %d", ErrInvalidPermutation, len(ids), Signs)
	}

	var slots [Signs]int
	for i, id := range ids {
		if id < 1 || id > Signs {
			return "", fmt.Errorf("%w: identifier %d out of range at position %d", ErrInvalidPermutation, id, i)
		}
		if slots[id-1] != 0 {
			return "", fmt.Errorf("%w: identifier %d repeated at position %d", ErrInvalidPermutation, id, i)
		}
		slots[id-1] = i + 1
	}

	buf := make([]byte, 0, Signs)
	for _, rank := range slots {
		buf = strconv.AppendInt(buf, int64(rank), 16)
	}
	return string(buf), nil
}

// Ranks parses a code into the rank of each sign; index j-1 is sign j.
func Ranks(code string) ([Signs]int, error) {
	var ranks [Signs]int
	if len(code) != Signs {
		return ranks, fmt.Errorf("%w: length %d", ErrInvalidCode, len(code))
	}

	var seen [Signs + 1]bool
	for i := 0; i < Signs; i++ {
		rank, ok := hexDigit(code[i])
		if !ok || rank < 1 || rank > Signs {
			return ranks, fmt.Errorf("%w: bad digit %q at %d", ErrInvalidCode, code[i], i)
		}
		if seen[rank] {
			return ranks, fmt.Errorf("%w: rank %d repeated", ErrInvalidCode, rank)
		}
		seen[rank] = true
		ranks[i] = rank
	}
	return ranks, nil
}

// Order recovers the feed ordering a code was encoded from.
func Order(code string) ([]int, error) {
	ranks, err := Ranks(code)
	if err != nil {
		return nil, err
	}
	ids := make([]int, Signs)
	for sign, rank := range ranks {
		ids[rank-1] = sign + 1
	}
	return ids, nil
}

// Valid reports whether code is a well-formed ranking code.
func Valid(code string) bool {
	_, err := Ranks(code)
	return err == nil
}

// hexDigit accepts lowercase hex only; codes are always stored lowercase.
func hexDigit(c byte) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10, true
	}
	return 0, false
}
