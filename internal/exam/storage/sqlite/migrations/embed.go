package migrations

import "embed"

// FS contains embedded SQLite migrations for exam storage.
//
//go:embed *.sql
var FS embed.FS
