package database

import (
	"context"
	"fmt"
	"os"

	"chat-insight-backend/config"
	"chat-insight-backend/internal/model"
	"chat-insight-backend/internal/repository"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// ProvideSourceRepository connects to a postgres or mysql source up front.
// A sqlite source is a file that is opened on every fetch instead, so a
// missing or replaced file is seen by the run that reads it.
func ProvideSourceRepository(cfg *config.Config) (repository.SourceRepository, error) {
	if cfg.Source.Driver == "sqlite" {
		log.Info().Str("path", cfg.Source.DSN).Msg("Reading source chats from sqlite file")
		return NewSQLiteSourceRepository(cfg), nil
	}
	db, err := NewDB(cfg)
	if err != nil {
		return nil, err
	}
	return NewSourceRepository(db), nil
}

type sqliteSourceRepository struct {
	cfg  *config.Config
	path string
}

func NewSQLiteSourceRepository(cfg *config.Config) repository.SourceRepository {
	return &sqliteSourceRepository{cfg: cfg, path: cfg.Source.DSN}
}

func (r *sqliteSourceRepository) FetchChats(ctx context.Context) ([]model.RawChat, error) {
	db, err := r.open()
	if err != nil {
		return nil, err
	}
	defer closeDB(db)
	return NewSourceRepository(db).FetchChats(ctx)
}

func (r *sqliteSourceRepository) FetchFeedback(ctx context.Context) ([]model.RawFeedback, error) {
	db, err := r.open()
	if err != nil {
		return nil, err
	}
	defer closeDB(db)
	return NewSourceRepository(db).FetchFeedback(ctx)
}

// open refuses a missing file; sqlite would otherwise create an empty one.
func (r *sqliteSourceRepository) open() (*gorm.DB, error) {
	if _, err := os.Stat(r.path); err != nil {
		log.Error().Err(err).Str("path", r.path).Msg("Source database file unavailable")
		return nil, fmt.Errorf("source database file %s: %w", r.path, err)
	}
	db, err := gorm.Open(sqlite.Open("file:"+r.path+"?mode=ro"), gormConfig(r.cfg))
	if err != nil {
		log.Error().Err(err).Str("path", r.path).Msg("Failed to open source database file")
		return nil, fmt.Errorf("open source database file %s: %w", r.path, err)
	}
	return db, nil
}

func closeDB(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to close source database file")
	}
}
