package migrations

import "embed"

// FS contains the result log schema.
//
//go:embed *.sql
var FS embed.FS
