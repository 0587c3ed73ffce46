// Package database provides a GORM database component with connection
// retry, pooling, health checks and schema migration.
//
// The driver is chosen by config: "sqlite" (gorm.io/driver/sqlite) or
// "postgres" (gorm.io/driver/postgres). Schema comes from either GORM
// auto-migration of registered models or versioned SQL files applied with
// golang-migrate (see the migration subpackage).
//
//	comp := database.NewComponent(cfg.Database, log).
//	    WithAutoMigrate(&gallery.ImageRecord{}).
//	    WithMigrations(gallery.Migrations())
package database
