// Package migrations embeds the goose SQL migrations that create the
// lab record tables for local development and test databases.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
