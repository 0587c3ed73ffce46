package database

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/imagefeed/component"
	"github.com/kbukum/imagefeed/database/migration"
	"github.com/kbukum/imagefeed/logger"
)

// Component wraps DB for lifecycle management.
type Component struct {
	cfg        Config
	log        *logger.Logger
	models     []interface{}
	migrations *migration.Set

	mu sync.RWMutex
	db *DB
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent creates a database component.
func NewComponent(cfg Config, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	return &Component{cfg: cfg, log: log.WithComponent("database")}
}

// WithAutoMigrate registers models for GORM auto-migration on Start.
func (c *Component) WithAutoMigrate(models ...interface{}) *Component {
	c.models = append(c.models, models...)
	return c
}

// WithMigrations registers versioned SQL migrations applied on Start when
// sql_migrations is enabled.
func (c *Component) WithMigrations(set *migration.Set) *Component {
	c.migrations = set
	return c
}

// DB returns the connection, or nil before Start.
func (c *Component) DB() *DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db
}

func (c *Component) Name() string { return "database" }

// Start connects and applies the configured schema migrations.
func (c *Component) Start(ctx context.Context) error {
	if !c.cfg.Enabled {
		c.log.Info("Database disabled, skipping")
		return nil
	}
	if err := c.cfg.Validate(); err != nil {
		return fmt.Errorf("database config: %w", err)
	}

	db, err := New(ctx, c.cfg, c.log)
	if err != nil {
		return fmt.Errorf("database start: %w", err)
	}

	if c.cfg.SQLMigrations && c.migrations != nil {
		sqlDB, err := db.GormDB.DB()
		if err != nil {
			_ = db.Close()
			return fmt.Errorf("database migrate: %w", err)
		}
		version, err := migration.Up(sqlDB, c.cfg.Driver, c.migrations)
		if err != nil {
			_ = db.Close()
			return fmt.Errorf("database migrate: %w", err)
		}
		c.log.Info("SQL migrations applied", map[string]interface{}{"version": version})
	}
	if c.cfg.AutoMigrate && len(c.models) > 0 {
		if err := db.AutoMigrate(c.models...); err != nil {
			_ = db.Close()
			return fmt.Errorf("database auto-migrate: %w", err)
		}
	}

	c.mu.Lock()
	c.db = db
	c.mu.Unlock()
	return nil
}

// Stop closes the connection.
func (c *Component) Stop(_ context.Context) error {
	c.mu.Lock()
	db := c.db
	c.db = nil
	c.mu.Unlock()
	if db == nil {
		return nil
	}
	return db.Close()
}

func (c *Component) Health(ctx context.Context) component.Health {
	if !c.cfg.Enabled {
		return component.Health{Name: c.Name(), Status: component.StatusHealthy, Message: "disabled"}
	}
	db := c.DB()
	if db == nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "database not initialized"}
	}
	if err := db.PingContext(ctx); err != nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: fmt.Sprintf("ping failed: %v", err)}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

func (c *Component) Describe() component.Description {
	details := fmt.Sprintf("%s pool=%d/%d", c.cfg.Driver, c.cfg.MaxOpenConns, c.cfg.MaxIdleConns)
	if c.cfg.SQLMigrations {
		details += " sql-migrations=on"
	}
	if c.cfg.AutoMigrate {
		details += " auto-migrate=on"
	}
	if !c.cfg.Enabled {
		details = "disabled"
	}
	return component.Description{Name: "Database", Type: "database", Details: details}
}
