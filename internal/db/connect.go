// Package db opens the database, applies the schema and seeds reference data.
package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/diewo77/vae-dossiers/internal/config"
	"github.com/diewo77/vae-dossiers/internal/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	connectAttempts = 10
	retryDelay      = 2 * time.Second
)

// coreTables must exist once the schema is applied.
var coreTables = []string{"accounts", "candidates", "candidacies", "candidacy_statuses", "feasibilities"}

func dialector(cfg config.DatabaseConfig) gorm.Dialector {
	if cfg.Driver == "sqlite" {
		return sqlite.Open(cfg.ConnString())
	}
	return postgres.Open(NormalizeDSN(cfg.ConnString()))
}

// Connect opens the database, retrying while it comes up.
func Connect(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	if log == nil {
		log = zap.NewNop()
	}
	level := logger.Silent
	if cfg.Debug {
		level = logger.Info
	}
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(level)}

	var (
		conn *gorm.DB
		err  error
	)
	for i := 1; i <= connectAttempts; i++ {
		conn, err = gorm.Open(dialector(cfg), gcfg)
		if err == nil {
			break
		}
		log.Warn("database connection failed, retrying",
			zap.Int("attempt", i), zap.Int("max", connectAttempts), zap.Error(err))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryDelay):
		}
	}
	if err != nil {
		return nil, fmt.Errorf("connect database after %d attempts: %w", connectAttempts, err)
	}
	if err := conn.WithContext(ctx).Exec("SELECT 1").Error; err != nil {
		return nil, fmt.Errorf("db ping failed: %w", err)
	}
	if cfg.Driver == "sqlite" {
		// Candidacy transactions need foreign keys and a single writer.
		conn.Exec("PRAGMA foreign_keys = ON")
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.SetMaxOpenConns(1)
		}
	}
	log.Info("database connected", zap.String("driver", cfg.Driver), zap.String("dsn", MaskDSN(cfg.ConnString())))
	return conn, nil
}

// Migrate applies the schema. SQL migrations run through golang-migrate when
// enabled on postgres; otherwise models are auto-migrated.
func Migrate(conn *gorm.DB, cfg *config.Config, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.App.Migrations && cfg.Database.Driver == "postgres" {
		log.Info("running sql migrations", zap.String("dir", cfg.App.MigrationsDir))
		if err := runSQLMigrations(cfg.App.MigrationsDir, ToURLDSN(NormalizeDSN(cfg.Database.ConnString()))); err != nil {
			return fmt.Errorf("sql migrations failed: %w", err)
		}
	} else {
		if cfg.App.Migrations {
			log.Warn("sql migrations target postgres, falling back to AutoMigrate", zap.String("driver", cfg.Database.Driver))
		}
		// gorm orders the models by their relations, join tables included
		if err := conn.AutoMigrate(models.All()...); err != nil {
			return fmt.Errorf("automigrate: %w", err)
		}
	}
	for _, table := range coreTables {
		if !conn.Migrator().HasTable(table) {
			return errors.New("missing table after migration: " + table)
		}
	}
	return nil
}

// Ping reports whether the database answers.
func Ping(ctx context.Context, conn *gorm.DB) error {
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
