// Package model contains domain models passed between layers.
package model

import (
	"encoding/json"

	"github.com/okian/uranai/internal/domain/ranking"
)

// Record is one persisted day: the YYYYMMDD key and its ranking code.
type Record struct {
	Date string // 8-digit YYYYMMDD, unique
	Code string // 12 lowercase hex digits, inverse-permutation form
}

// Row is one decoded day as served to readers.
type Row struct {
	Year  int
	Month int
	Day   int
	Ranks [ranking.Signs]int // Ranks[j-1] is the rank of sign j
}

// FieldCount is the number of integers in a row's wire form.
const FieldCount = 3 + ranking.Signs

// Fields returns year, month, day and the twelve ranks in wire order.
func (r Row) Fields() []int {
	out := make([]int, 0, FieldCount)
	out = append(out, r.Year, r.Month, r.Day)
	return append(out, r.Ranks[:]...)
}

// MarshalJSON encodes a row as a flat array.
func (r Row) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Fields())
}

// Dataset is the full history ordered by date ascending.
type Dataset []Row
