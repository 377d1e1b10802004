// Package migrations contains the embedded schema migrations for the SQL
// movie repositories, one directory per dialect.
package migrations

import "embed"

// Files exposes the compiled-in migration SQL files.
//
//go:embed sqlite/*.sql mysql/*.sql
var Files embed.FS
