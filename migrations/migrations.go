// Package migrations embeds the goose migrations of the voice catalog.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
