package timescaledb

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"chat-insight-backend/config"
	"chat-insight-backend/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"
)

type MetricStore interface {
	// ReplaceMetricEvents swaps the whole event table for events in one
	// transaction; the series is rebuilt from scratch on every report run.
	ReplaceMetricEvents(ctx context.Context, events []model.MetricEvent) error
	Close()
}

type timescaleMetricStore struct {
	pool      *pgxpool.Pool
	tableName string
}

const (
	metricEventsTableName = "chat_metric_events"
	colTime               = "time"
	colMetricName         = "metric_name"
	colModel              = "model"
	colUserName           = "user_name"
	colTags               = "tags" // JSONB
)

// ProvideTimescaleDBPool connects and prepares the hypertable. When the store
// is disabled it returns nil values so optional consumers can skip it.
func ProvideTimescaleDBPool(lc fx.Lifecycle, cfg *config.Config) (MetricStore, *pgxpool.Pool, error) {
	if !cfg.TimescaleDB.Enabled {
		log.Warn().Msg("TimescaleDB disabled, metric events will not be stored")
		return nil, nil, nil
	}
	store, pool, err := Connect(context.Background(), cfg.TimescaleDB.DSN)
	if err != nil {
		return nil, nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Closing TimescaleDB connection pool...")
			store.Close()
			return nil
		},
	})
	return store, pool, nil
}

func Connect(ctx context.Context, dsn string) (MetricStore, *pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		log.Error().Err(err).Msg("Failed to parse TimescaleDB DSN")
		return nil, nil, fmt.Errorf("invalid TimescaleDB DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Error().Err(err).Msg("Unable to create connection pool to TimescaleDB")
		return nil, nil, fmt.Errorf("failed to connect to TimescaleDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		log.Error().Err(err).Msg("Failed to ping TimescaleDB")
		return nil, nil, fmt.Errorf("failed to ping TimescaleDB: %w", err)
	}
	log.Info().Msg("TimescaleDB connection pool created and verified.")

	store := &timescaleMetricStore{
		pool:      pool,
		tableName: metricEventsTableName,
	}

	setupCtx, cancelSetup := context.WithTimeout(ctx, 30*time.Second)
	defer cancelSetup()
	if err := store.ensureHypertable(setupCtx); err != nil {
		pool.Close()
		log.Error().Err(err).Msg("Failed to ensure TimescaleDB hypertable exists")
		return nil, nil, fmt.Errorf("failed ensuring hypertable: %w", err)
	}
	return store, pool, nil
}

func (s *timescaleMetricStore) ensureHypertable(ctx context.Context) error {
	createTableSQL := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			%s TIMESTAMPTZ NOT NULL,
			%s TEXT NOT NULL,
			%s TEXT NOT NULL,
			%s TEXT NOT NULL,
			%s JSONB
		);`,
		s.tableName, colTime, colMetricName, colModel, colUserName, colTags)

	if _, err := s.pool.Exec(ctx, createTableSQL); err != nil {
		return fmt.Errorf("failed to create base table %s: %w", s.tableName, err)
	}

	var isHypertable bool
	_ = s.pool.QueryRow(ctx, `SELECT EXISTS (
        SELECT 1 FROM timescaledb_information.hypertables WHERE hypertable_name = $1
    );`, s.tableName).Scan(&isHypertable)

	if !isHypertable {
		log.Info().Str("table", s.tableName).Msg("Table is not a hypertable, attempting to create...")
		if _, err := s.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS timescaledb;"); err != nil {
			log.Warn().Err(err).Msg("Failed to ensure timescaledb extension exists (permission issue?). Trying to proceed...")
		}
		createHyperSQL := fmt.Sprintf(
			"SELECT create_hypertable('%s', '%s', if_not_exists => TRUE, chunk_time_interval => INTERVAL '7 days');",
			s.tableName, colTime,
		)
		_, err := s.pool.Exec(ctx, createHyperSQL)
		if err != nil && !strings.Contains(err.Error(), "already a hypertable") {
			return fmt.Errorf("failed to create hypertable %s: %w", s.tableName, err)
		}
	}

	indexSQL := fmt.Sprintf(`
        CREATE INDEX IF NOT EXISTS idx_%[1]s_name_model_time ON %[1]s (metric_name, model, time DESC);
        CREATE INDEX IF NOT EXISTS idx_%[1]s_user ON %[1]s (user_name, time DESC);
        CREATE INDEX IF NOT EXISTS idx_%[1]s_tags ON %[1]s USING GIN (tags);
    `, s.tableName)
	if _, err := s.pool.Exec(ctx, indexSQL); err != nil {
		log.Warn().Err(err).Msg("Failed to create indexes on metrics table (continuing)")
	}
	log.Info().Str("table", s.tableName).Msg("Ensured metric hypertable and indexes")
	return nil
}

func (s *timescaleMetricStore) ReplaceMetricEvents(ctx context.Context, events []model.MetricEvent) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin metric replace: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, fmt.Sprintf("DELETE FROM %s", s.tableName)); err != nil {
		return fmt.Errorf("clear metric events: %w", err)
	}

	columns := []string{colTime, colMetricName, colModel, colUserName, colTags}
	source := pgx.CopyFromSlice(len(events), func(i int) ([]interface{}, error) {
		e := events[i]
		tagsJSON, err := json.Marshal(e.Tags)
		if err != nil {
			log.Error().Err(err).Interface("tags", e.Tags).Msg("Failed to marshal metric tags to JSON, inserting null")
			tagsJSON = nil
		}
		return []interface{}{e.Time, e.MetricName, e.Model, e.UserName, tagsJSON}, nil
	})

	copyCount, err := tx.CopyFrom(ctx, pgx.Identifier{s.tableName}, columns, source)
	if err != nil {
		log.Error().Err(err).Msg("Failed to bulk insert metric events into TimescaleDB")
		return fmt.Errorf("timescaledb copyfrom failed: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit metric replace: %w", err)
	}

	if int(copyCount) != len(events) {
		log.Warn().Int64("inserted", copyCount).Int("expected", len(events)).Msg("TimescaleDB CopyFrom event count mismatch")
	} else {
		log.Info().Int64("count", copyCount).Msg("Replaced metric events in TimescaleDB")
	}
	return nil
}

func (s *timescaleMetricStore) Close() {
	s.pool.Close()
}
