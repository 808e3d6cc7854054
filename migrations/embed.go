// Package migrations embeds the SQL schema migrations into the binary
// and registers them with the database package.
package migrations

import (
	"embed"

	"github.com/Thaaan184/admin-dashboard-publicver/internal/infrastructure/database"
)

//go:embed *.sql
var migrationsFS embed.FS

func init() {
	database.MigrationsFS = migrationsFS
	database.MigrationsDir = "."
}
