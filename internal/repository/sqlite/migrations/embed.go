// Package migrations holds the embedded SQLite schema and its runner.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
