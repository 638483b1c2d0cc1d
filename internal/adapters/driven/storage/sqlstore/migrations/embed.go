// Package migrations embeds the goose migration files of the SQL store,
// one directory per dialect.
package migrations

import "embed"

// FS contains all SQL migration files embedded at compile time.
//
//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS

// Dialect directories inside FS.
const (
	DirSQLite   = "sqlite"
	DirPostgres = "postgres"
)
