// Package db opens the application database.
package db

import (
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/markstash/markstash/internal/config"
	"github.com/markstash/markstash/internal/db/dsn"
	"github.com/markstash/markstash/internal/db/models"
)

// ErrUnknownEngine is returned for an unsupported DB.GormEngine.
var ErrUnknownEngine = errors.New("unknown gorm engine")

// Dialector returns the gorm dialector configured by DB.GormEngine.
// For sqlite, DB.Name is the file name (":memory:" works).
func Dialector(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DB.GormEngine {
	case "mysql", "":
		return gormmysql.Open(dsn.Create(cfg)), nil
	case "postgres":
		return gormpostgres.Open(dsn.Postgres(cfg)), nil
	case "sqlite":
		return sqlite.Open(cfg.DB.Name), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, cfg.DB.GormEngine)
	}
}

// Open connects to the database and migrates the schema.
func Open(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if err = db.AutoMigrate(&models.User{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Debug().Str("engine", cfg.DB.GormEngine).Msg("database ready")

	return db, nil
}
