package database

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"money-tracking/internal/config"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// sqlitePragmas are carried in the DSN so that every pooled connection gets
// them, not only the one a PRAGMA statement happens to run on.
const sqlitePragmas = "_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on&_busy_timeout=5000"

// Init opens the ledger store described by cfg with basic tuning.
func Init(cfg config.DatabaseConfig) (*gorm.DB, error) {
	return InitWithLogLevel(cfg, "")
}

// InitWithLogLevel is Init with an explicit gorm log level
// (silent, error, warn, info). An empty level follows cfg.LogMode.
func InitWithLogLevel(cfg config.DatabaseConfig, level string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "", "sqlite":
		// ensure parent directory exists
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
		dialector = sqlite.Open(sqliteDSN(cfg.Path))
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:  newLogger(cfg.LogMode, level),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}

	// connection pool
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

func sqliteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path + "&" + sqlitePragmas
	}
	return "file:" + path + "?" + sqlitePragmas
}

func newLogger(logMode bool, level string) logger.Interface {
	l := logger.New(log.Default(), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		IgnoreRecordNotFoundError: true,
	})
	switch strings.ToLower(level) {
	case "info":
		return l.LogMode(logger.Info)
	case "warn":
		return l.LogMode(logger.Warn)
	case "error":
		return l.LogMode(logger.Error)
	case "silent":
		return l.LogMode(logger.Silent)
	}
	if logMode {
		return l.LogMode(logger.Info)
	}
	return l.LogMode(logger.Silent)
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
