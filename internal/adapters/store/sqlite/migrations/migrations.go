// Package migrations embeds the SQLite schema migrations applied at open.
package migrations

import "embed"

// FS holds the ordered migration files.
//
//go:embed *.sql
var FS embed.FS
