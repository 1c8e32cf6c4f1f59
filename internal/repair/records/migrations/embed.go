// Package migrations embeds the goose migrations for the sync_records store.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
