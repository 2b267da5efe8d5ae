package migrations

import "embed"

// FS contains embedded SQLite migrations for ranking storage.
//
//go:embed *.sql
var FS embed.FS
