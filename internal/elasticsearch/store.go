package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"chat-insight-backend/config"
	"chat-insight-backend/internal/model"

	"github.com/cenkalti/backoff"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esutil"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"
)

// FeedbackStore indexes feedback details for the search API.
type FeedbackStore interface {
	IndexFeedback(ctx context.Context, details []model.FeedbackDetail) error
	Close(ctx context.Context) error
}

type elasticFeedbackStore struct {
	client          *elasticsearch.Client
	bulkIndexer     esutil.BulkIndexer
	index           string
	countSuccessful uint64
	countFailed     uint64
}

// NewElasticFeedbackStore returns a nil store when Elasticsearch is disabled.
func NewElasticFeedbackStore(lc fx.Lifecycle, cfg *config.Config) (FeedbackStore, error) {
	if !cfg.Elasticsearch.Enabled {
		log.Info().Msg("Elasticsearch disabled, feedback details will not be indexed")
		return nil, nil
	}
	if len(cfg.Elasticsearch.Addresses) == 0 {
		log.Error().Msg("Elasticsearch addresses are not configured.")
		return nil, errors.New("elasticsearch configuration missing")
	}

	var esClient *elasticsearch.Client
	operation := func() error {
		var err error
		esClient, err = elasticsearch.NewClient(clientConfig(cfg))
		if err != nil {
			log.Warn().Err(err).Msg("Attempt failed: Error creating the Elasticsearch client")
			return err
		}

		res, errPing := esClient.Info(esClient.Info.WithContext(context.Background()))
		if errPing != nil {
			log.Warn().Err(errPing).Msg("Attempt failed: Error during Elasticsearch Info() call (transport level)")
			return errPing
		}
		defer res.Body.Close()
		if res.IsError() {
			errMsg := fmt.Errorf("elasticsearch Info() returned error status: %s", res.Status())
			log.Warn().Err(errMsg).Msg("Attempt failed: Elasticsearch ping returned error status")
			return errMsg
		}
		log.Info().Msg("Elasticsearch client initialized and connection verified")
		return nil
	}

	connectBackoff := backoff.NewExponentialBackOff()
	connectBackoff.InitialInterval = 2 * time.Second
	connectBackoff.MaxInterval = 15 * time.Second
	connectBackoff.MaxElapsedTime = 90 * time.Second

	log.Info().Msg("Attempting to connect to Elasticsearch with retries...")
	if err := backoff.Retry(operation, connectBackoff); err != nil {
		log.Error().Err(err).Msg("Failed to connect to Elasticsearch after multiple retries")
		return nil, fmt.Errorf("connecting to elasticsearch: %w", err)
	}

	store := &elasticFeedbackStore{
		client: esClient,
		index:  cfg.Elasticsearch.FeedbackIndex,
	}

	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Client:        esClient,
		Index:         store.index,
		NumWorkers:    cfg.Elasticsearch.BulkWorkers,
		FlushBytes:    cfg.Elasticsearch.FlushBytes,
		FlushInterval: cfg.Elasticsearch.FlushInterval,
		OnError: func(ctx context.Context, err error) {
			log.Error().Err(err).Msg("BulkIndexer error")
		},
		OnFlushStart: func(ctx context.Context) context.Context {
			log.Debug().Msg("BulkIndexer flush starting")
			return ctx
		},
		OnFlushEnd: func(ctx context.Context) {
			log.Debug().Msg("BulkIndexer flush ended")
		},
	})
	if err != nil {
		log.Error().Err(err).Msg("Error creating the BulkIndexer")
		return nil, err
	}
	store.bulkIndexer = bi
	log.Info().Str("index", store.index).Msg("Elasticsearch BulkIndexer initialized")

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Closing Elasticsearch BulkIndexer...")
			return store.Close(ctx)
		},
	})

	return store, nil
}

// IndexFeedback queues the details for indexing. The feedback id is the
// document id, so indexing the same report twice overwrites instead of duplicating.
func (s *elasticFeedbackStore) IndexFeedback(ctx context.Context, details []model.FeedbackDetail) error {
	if len(details) == 0 {
		return nil
	}

	currentFailed := atomic.LoadUint64(&s.countFailed)

	for _, detail := range details {
		data, err := json.Marshal(detail)
		if err != nil {
			log.Error().Err(err).Str("feedback_id", detail.FeedbackID).Msg("Failed to marshal feedback detail for Elasticsearch")
			atomic.AddUint64(&s.countFailed, 1)
			continue
		}

		err = s.bulkIndexer.Add(ctx, esutil.BulkIndexerItem{
			Action:     "index",
			Index:      s.index,
			DocumentID: detail.FeedbackID,
			Body:       bytes.NewReader(data),
			OnSuccess: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem) {
				atomic.AddUint64(&s.countSuccessful, 1)
			},
			OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
				atomic.AddUint64(&s.countFailed, 1)
				if err != nil {
					log.Error().Err(err).Str("document_id", item.DocumentID).Msg("Failed to index feedback detail")
					return
				}
				log.Error().Str("document_id", item.DocumentID).Str("type", res.Error.Type).Str("reason", res.Error.Reason).Msg("Failed to index feedback detail")
			},
		})
		if err != nil {
			log.Error().Err(err).Msg("Failed to add item to BulkIndexer")
			atomic.AddUint64(&s.countFailed, 1)
		}
	}
	log.Debug().Int("count", len(details)).Msg("Added feedback details to Elasticsearch BulkIndexer queue")

	if atomic.LoadUint64(&s.countFailed) > currentFailed {
		return errors.New("one or more feedback details failed during bulk indexing attempt")
	}
	return nil
}

func (s *elasticFeedbackStore) Close(ctx context.Context) error {
	err := s.bulkIndexer.Close(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Error closing BulkIndexer")
	} else {
		log.Info().Msg("BulkIndexer closed.")
	}

	stats := s.bulkIndexer.Stats()
	log.Info().
		Uint64("indexed", stats.NumIndexed).
		Uint64("added", stats.NumAdded).
		Uint64("flushed", stats.NumFlushed).
		Uint64("failed", stats.NumFailed).
		Uint64("requests", stats.NumRequests).
		Uint64("callback_successful", atomic.LoadUint64(&s.countSuccessful)).
		Uint64("callback_failed", atomic.LoadUint64(&s.countFailed)).
		Msg("Elasticsearch BulkIndexer final stats")

	return err
}
