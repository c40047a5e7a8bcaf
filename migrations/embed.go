// Package migrations embeds the goose SQL migrations so the binary can
// migrate the schema without the source tree present.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
