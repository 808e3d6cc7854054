// Package database manages the SQLite connection and schema migrations.
//
// The DB type wraps database/sql with WAL mode, a single-connection pool
// and embedded migration support. Migrations live in the top-level
// migrations package and register themselves via MigrationsFS.
package database
