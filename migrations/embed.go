// Package migrations embeds the schema migrations for each storage driver.
// Files follow golang-migrate naming: NNNNNN_name.up.sql / NNNNNN_name.down.sql.
package migrations

import "embed"

// FS holds the postgres/ and sqlite/ migration directories.
//
//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS

const (
	// PostgresDir is the FS directory holding PostgreSQL migrations.
	PostgresDir = "postgres"
	// SQLiteDir is the FS directory holding SQLite migrations.
	SQLiteDir = "sqlite"
)
