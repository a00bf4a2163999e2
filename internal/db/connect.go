package db

import (
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/grupocs/rrhh/internal/config"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the configured database, retrying while PostgreSQL starts.
func Open(cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}
	logLevel := logger.Silent
	if cfg.Debug {
		logLevel = logger.Info
	}
	gcfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	}

	var conn *gorm.DB
	op := func() error {
		var err error
		conn, err = gorm.Open(dialector, gcfg)
		if err != nil {
			return err
		}
		return conn.Exec("SELECT 1").Error
	}
	notify := func(err error, wait time.Duration) {
		log.Warn("database not ready, retrying", zap.Error(err), zap.Duration("wait", wait))
	}
	b := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 8)
	if err := backoff.RetryNotify(op, b, notify); err != nil {
		return nil, fmt.Errorf("failed to connect database after retries: %w", err)
	}
	log.Info("database connected",
		zap.String("driver", cfg.Driver()),
		zap.String("dsn", MaskDSN(cfg.URL)))
	return conn, nil
}

func dialectorFor(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver() {
	case "postgres":
		dsn := NormalizeDSN(cfg.URL)
		if dsn == "" {
			return nil, fmt.Errorf("DATABASE_URL is empty")
		}
		return postgres.Open(dsn), nil
	default:
		return sqlite.Open(withForeignKeys(cfg.SQLitePath())), nil
	}
}

// withForeignKeys turns on FK enforcement so document rows cascade with their contract.
func withForeignKeys(path string) string {
	if strings.Contains(path, "_foreign_keys") || strings.Contains(path, "_fk=") {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on"
}
