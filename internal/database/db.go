package database

import (
	"fmt"
	"time"

	"chat-insight-backend/config"

	"github.com/cenkalti/backoff"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens the source database, retrying while it comes up. A sqlite DSN
// is created if missing, which the seeder relies on; report runs read sqlite
// through NewSQLiteSourceRepository instead.
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Source.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.Source.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.Source.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.Source.DSN)
	default:
		return nil, fmt.Errorf("unsupported source driver: %s", cfg.Source.Driver)
	}

	var db *gorm.DB
	operation := func() error {
		var err error
		db, err = gorm.Open(dialector, gormConfig(cfg))
		if err != nil {
			log.Warn().Err(err).Msg("Attempt failed: Error opening source database")
			return err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return backoff.Permanent(err)
		}
		if err := sqlDB.Ping(); err != nil {
			log.Warn().Err(err).Msg("Attempt failed: Error pinging source database")
			return err
		}
		return nil
	}

	connectBackoff := backoff.NewExponentialBackOff()
	connectBackoff.InitialInterval = 1 * time.Second
	connectBackoff.MaxInterval = 10 * time.Second
	connectBackoff.MaxElapsedTime = 30 * time.Second

	if err := backoff.Retry(operation, connectBackoff); err != nil {
		log.Error().Err(err).Str("driver", cfg.Source.Driver).Msg("Failed to connect to source database")
		return nil, fmt.Errorf("failed to connect to source database: %w", err)
	}

	sqlDB, _ := db.DB()
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Info().Str("driver", cfg.Source.Driver).Msg("Source database connection established")
	return db, nil
}

func gormConfig(cfg *config.Config) *gorm.Config {
	gormLogger := logger.Default.LogMode(logger.Silent)
	if cfg.Source.LogLevel == "debug" {
		gormLogger = logger.Default.LogMode(logger.Info)
	}
	return &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
	}
}
