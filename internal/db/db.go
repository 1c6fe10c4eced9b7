package db

import (
	"expense_tracker/internal/config" // Custom import path (Config)
	"fmt"                             // Error wrapping

	"github.com/glebarez/sqlite" // Pure Go SQLite driver for GORM
	"gorm.io/driver/mysql"       // MySQL driver for GORM
	"gorm.io/driver/postgres"    // PostgreSQL driver for GORM
	"gorm.io/gorm"               // GORM ORM library
	"gorm.io/gorm/logger"        // GORM logger levels
)

// Open connects to the database selected by cfg.DBDriver
func Open(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector // Driver specific dialector
	switch cfg.DBDriver {
	case config.DriverMySQL:
		dialector = mysql.Open(cfg.DSN()) // MySQL connection
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DSN()) // PostgreSQL connection
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.DSN()) // SQLite file
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}
	gormConfig := &gorm.Config{}
	// Keep SQL logging quiet in production
	if cfg.IsProd {
		gormConfig.Logger = logger.Default.LogMode(logger.Silent)
	}
	conn, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.DBDriver, err)
	}
	// SQLite allows a single writer
	if cfg.DBDriver == config.DriverSQLite {
		sqlDB, err := conn.DB()
		if err != nil {
			return nil, fmt.Errorf("sqlite handle: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return conn, nil
}
