// Package sqlstore implements the sync and run history ports on a
// relational database.
//
// Two drivers share one set of queries:
//
//   - SQLite through modernc.org/sqlite, a pure Go implementation that
//     requires no CGO
//   - PostgreSQL through the pgx stdlib driver
//
// # Schema
//
// The schema is managed by goose migrations embedded per dialect in the
// migrations/ directory. Run Store.Migrate (or `prsync init-db`) before use.
//
// # Writes
//
// Every insert is ON CONFLICT DO NOTHING, so replaying a run leaves the
// tables unchanged. Timestamps are written in UTC with second precision.
package sqlstore
