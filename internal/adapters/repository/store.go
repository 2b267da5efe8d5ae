// Package repository persists one ranking record per calendar day.
package repository

import (
	"context"
	"fmt"

	"github.com/okian/uranai/internal/domain/calendar"
	"github.com/okian/uranai/internal/domain/model"
	"github.com/okian/uranai/internal/domain/ranking"
)

// Store provides get-or-create access to ranking records. Records are
// never updated or deleted.
type Store interface {
	// GetOrInsert returns the record for date, creating it with code if
	// absent. created reports whether this call wrote the record; when a
	// record exists its code is returned unchanged (first write wins).
	GetOrInsert(ctx context.Context, date, code string) (rec model.Record, created bool, err error)

	// All returns every record ordered by date ascending.
	All(ctx context.Context) ([]model.Record, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases the backend.
	Close() error
}

// validate rejects keys and codes that must never reach a backend.
func validate(date, code string) error {
	if !calendar.ValidKey(date) {
		return fmt.Errorf("%w: date %q", ErrInvalidRecord, date)
	}
	if !ranking.Valid(code) {
		return fmt.Errorf("%w: code %q", ErrInvalidRecord, code)
	}
	return nil
}
