// Package migrations embeds the SQL migration files for use with the goose
// programmatic API, both at scraper startup and in integration tests.
package migrations

import "embed"

// FS holds all *.sql migration files embedded at compile time.
//
//go:embed *.sql
var FS embed.FS
