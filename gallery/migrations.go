package gallery

import (
	"embed"

	"github.com/kbukum/imagefeed/database"
	"github.com/kbukum/imagefeed/database/migration"
)

//go:embed migrations
var migrationFiles embed.FS

// Migrations returns the SQL migrations creating the images table.
func Migrations() *migration.Set {
	return migration.NewSet(migrationFiles, map[string]string{
		database.DriverSQLite:   "migrations/sqlite",
		database.DriverPostgres: "migrations/postgres",
	})
}
