package database

import (
	"context"
	"fmt"
	stdlog "log"
	"os"
	"time"

	"corpanalyst/cmd/internal/config"
	"corpanalyst/cmd/internal/domain/entity"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Init opens the cache store for the configured driver and migrates the cache tables.
// A store that cannot be reached is a startup failure: the freshness gate is
// meaningless without it.
func Init(cfg config.Database) (*gorm.DB, error) {
	switch cfg.Driver {
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)
		return open(postgres.Open(dsn), 7, 5, 30*time.Minute)
	case "memory":
		return OpenMemory()
	default:
		return open(sqlite.Open(cfg.Path), 1, 1, time.Hour)
	}
}

// OpenMemory opens a private in-memory SQLite store. A single connection is
// kept so every statement sees the same database.
func OpenMemory() (*gorm.DB, error) {
	return open(sqlite.Open("file::memory:"), 1, 1, 0)
}

func open(dialector gorm.Dialector, maxOpen, maxIdle int, maxLifetime time.Duration) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.New(stdlog.New(os.Stdout, "\r\n", stdlog.LstdFlags), gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache store: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetConnMaxLifetime(maxLifetime)

	err = db.AutoMigrate(
		&entity.Filing{},
		&entity.FirmographicEnrichment{},
		&entity.ProfessionalNetworkEnrichment{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate cache store: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to reach cache store: %w", err)
	}
	return db, nil
}
