// Package migrations embeds the SQL schema applied by placementctl migrate.
package migrations

import "embed"

// Files holds every migration in lexical order of application.
//
//go:embed *.sql
var Files embed.FS
