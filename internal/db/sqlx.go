package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
)

// NewSQLX wraps the connection pool owned by GORM so raw read-model queries
// share it instead of opening a second pool.
func NewSQLX(gormDB *gorm.DB) (*sqlx.DB, error) {
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql handle: %w", err)
	}
	return sqlx.NewDb(sqlDB, sqlxDriverName(gormDB.Dialector.Name())), nil
}

// sqlxDriverName maps GORM dialect names onto the names sqlx uses to pick a bind style.
func sqlxDriverName(dialect string) string {
	switch dialect {
	case "postgres":
		return "postgres"
	case "sqlite":
		return "sqlite3"
	default:
		return dialect
	}
}
