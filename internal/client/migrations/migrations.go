// Package migrations embeds the goose SQL migrations for the dashboard's
// local snapshot cache.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
