// Package database opens the local state store.
package database

import (
	"context"
	"fmt"
	stdlog "log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// Supported DSN schemes.
const (
	SchemeSQLite     = "sqlite://"
	SchemePostgres   = "postgres://"
	SchemePostgreSQL = "postgresql://"
)

// PoolConfig holds connection pool configuration.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DefaultPoolConfig returns pool settings suited to the driver. SQLite gets a
// single connection so an in-memory database is shared by every query.
func DefaultPoolConfig(dsn string) *PoolConfig {
	if strings.HasPrefix(dsn, SchemeSQLite) {
		return &PoolConfig{
			MaxOpenConns:    1,
			MaxIdleConns:    1,
			ConnMaxLifetime: 0,
			ConnMaxIdleTime: 0,
		}
	}
	return &PoolConfig{
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: 1 * time.Hour,
		ConnMaxIdleTime: 30 * time.Minute,
	}
}

// Open connects to the store named by dsn and verifies connectivity.
// A nil pool uses DefaultPoolConfig.
func Open(ctx context.Context, dsn string, pool *PoolConfig, logger zerolog.Logger) (*gorm.DB, error) {
	dialector, driver, err := dialectorFor(dsn)
	if err != nil {
		return nil, err
	}
	if pool == nil {
		pool = DefaultPoolConfig(dsn)
	}

	logger.Info().
		Str("driver", driver).
		Int("max_connections", pool.MaxOpenConns).
		Msg("opening local state store")

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger.New(
			stdlog.New(logger.With().Str("component", "gorm").Logger(), "", 0),
			gormLogger.Config{
				SlowThreshold:             1 * time.Second,
				LogLevel:                  gormLogger.Warn,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(pool.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(pool.ConnMaxIdleTime)

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping %s store: %w", driver, err)
	}

	logger.Info().Str("driver", driver).Msg("local state store opened")

	return db, nil
}

// Close releases the store's connections.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func dialectorFor(dsn string) (gorm.Dialector, string, error) {
	switch {
	case strings.HasPrefix(dsn, SchemeSQLite):
		path := strings.TrimPrefix(dsn, SchemeSQLite)
		if path == "" {
			return nil, "", fmt.Errorf("sqlite DSN %q has no path", dsn)
		}
		if !strings.HasPrefix(path, ":memory:") && !strings.HasPrefix(path, "file:") {
			if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
				return nil, "", fmt.Errorf("failed to create state directory: %w", err)
			}
		}
		return sqlite.Open(path), "sqlite", nil
	case strings.HasPrefix(dsn, SchemePostgres), strings.HasPrefix(dsn, SchemePostgreSQL):
		return postgres.Open(dsn), "postgres", nil
	default:
		return nil, "", fmt.Errorf("unsupported state DSN %q: expected sqlite:// or postgres://", dsn)
	}
}
