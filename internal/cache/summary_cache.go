package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"chat-insight-backend/config"
	"chat-insight-backend/internal/model"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"
)

const latestSummaryKey = "report:summary:latest"

var ErrCacheMiss = errors.New("summary not cached")

// SummaryCache holds the summary of the most recent report run.
type SummaryCache interface {
	Get(ctx context.Context) (*model.Summary, string, error)
	Set(ctx context.Context, date string, summary model.Summary) error
	Close() error
}

type cachedSummary struct {
	Date    string        `json:"date"`
	Summary model.Summary `json:"summary"`
}

type redisSummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSummaryCache falls back to a no-op cache when Redis is disabled.
func NewSummaryCache(lc fx.Lifecycle, cfg *config.Config) (SummaryCache, error) {
	if !cfg.Redis.Enabled {
		log.Info().Msg("Redis disabled, summaries are served from report files")
		return noopSummaryCache{}, nil
	}

	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	opts.PoolSize = 10
	opts.MinIdleConns = 2
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	c := &redisSummaryCache{client: client, ttl: cfg.Redis.SummaryTTL}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Closing Redis client")
			return c.Close()
		},
	})
	log.Info().Str("addr", opts.Addr).Dur("ttl", c.ttl).Msg("Redis summary cache initialized")
	return c, nil
}

func (c *redisSummaryCache) Get(ctx context.Context) (*model.Summary, string, error) {
	data, err := c.client.Get(ctx, latestSummaryKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, "", ErrCacheMiss
	}
	if err != nil {
		return nil, "", fmt.Errorf("reading cached summary: %w", err)
	}
	return decodeSummary(data)
}

func (c *redisSummaryCache) Set(ctx context.Context, date string, summary model.Summary) error {
	data, err := json.Marshal(cachedSummary{Date: date, Summary: summary})
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	return c.client.Set(ctx, latestSummaryKey, data, c.ttl).Err()
}

func (c *redisSummaryCache) Close() error {
	return c.client.Close()
}

func decodeSummary(data []byte) (*model.Summary, string, error) {
	var cached cachedSummary
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, "", fmt.Errorf("decoding cached summary: %w", err)
	}
	return &cached.Summary, cached.Date, nil
}

type noopSummaryCache struct{}

func (noopSummaryCache) Get(context.Context) (*model.Summary, string, error) {
	return nil, "", ErrCacheMiss
}

func (noopSummaryCache) Set(context.Context, string, model.Summary) error { return nil }

func (noopSummaryCache) Close() error { return nil }
