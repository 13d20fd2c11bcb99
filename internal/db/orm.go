package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"infinite-experiment/clanledger/internal/config"
	"infinite-experiment/clanledger/internal/logging"
	gormModels "infinite-experiment/clanledger/internal/models/gorm"
)

// OpenORM connects GORM to the configured driver and migrates the schema.
func OpenORM(cfg *config.Config) (*gorm.DB, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		db, err := gorm.Open(postgres.Open(cfg.PostgresDSN()), &gorm.Config{TranslateError: true})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		if err := Migrate(db); err != nil {
			return nil, err
		}
		logging.Info("Connected to Postgres via GORM", "host", cfg.PGHost, "db", cfg.PGDB)
		return db, nil
	default:
		dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=1", cfg.SQLitePath)
		db, err := OpenSQLite(dsn)
		if err != nil {
			return nil, err
		}
		logging.Info("Connected to SQLite via GORM", "path", cfg.SQLitePath)
		return db, nil
	}
}

// OpenSQLite opens and migrates a SQLite database. Tests pass ":memory:".
// The pool is pinned to one connection: SQLite has a single writer, and an
// in-memory database is private to the connection that created it.
func OpenSQLite(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sqlite handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(gormModels.AllModels()...); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}
