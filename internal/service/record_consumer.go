package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"chat-insight-backend/config"
	"chat-insight-backend/internal/elasticsearch"
	"chat-insight-backend/internal/kafka"
	"chat-insight-backend/internal/model"

	"github.com/rs/zerolog/log"
	kafkaGo "github.com/segmentio/kafka-go"
)

type RecordConsumerService interface {
	Run(ctx context.Context, wg *sync.WaitGroup)
}

type recordConsumerService struct {
	consumer      kafka.RecordConsumer
	feedbackStore elasticsearch.FeedbackStore
	batchSize     int
	maxWaitTime   time.Duration
}

func NewRecordConsumerService(
	consumer kafka.RecordConsumer,
	feedbackStore elasticsearch.FeedbackStore,
	cfg *config.Config,
) RecordConsumerService {
	batchSize := cfg.Report.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	maxWaitTime := cfg.Report.MaxBatchWait
	if maxWaitTime <= 0 {
		maxWaitTime = 5 * time.Second
	}
	return &recordConsumerService{
		consumer:      consumer,
		feedbackStore: feedbackStore,
		batchSize:     batchSize,
		maxWaitTime:   maxWaitTime,
	}
}

func (s *recordConsumerService) Run(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()
	log.Info().Msg("Starting Record Consumer Service loop...")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Record Consumer Service loop stopping due to context cancellation.")
			return
		default:
		}

		err := s.processBatch(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				log.Info().Msg("Context cancelled during batch processing.")
				return
			}
			log.Error().Err(err).Msg("Error processing consumer batch")
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
		}
	}
}

// processBatch collects up to batchSize records or whatever arrives within
// maxWaitTime, indexes them, then commits. Undecodable messages are committed
// with the batch so they are not redelivered forever.
func (s *recordConsumerService) processBatch(ctx context.Context) error {
	details := make([]model.FeedbackDetail, 0, s.batchSize)
	messages := make([]kafkaGo.Message, 0, s.batchSize)
	batchStart := time.Now()

	for len(messages) < s.batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}

		fetchCtx, cancel := context.WithTimeout(ctx, s.maxWaitTime-time.Since(batchStart))
		detail, msg, err := s.consumer.FetchMessage(fetchCtx)
		cancel()

		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
				log.Debug().Int("batch_size", len(messages)).Msg("Max wait time reached for batch, processing partial batch.")
				break
			}
			if msg.Topic != "" {
				log.Warn().Int64("offset", msg.Offset).Msg("Skipping undecodable record, it will be committed with the batch.")
				messages = append(messages, msg)
				continue
			}
			return fmt.Errorf("failed to fetch kafka message: %w", err)
		}

		details = append(details, *detail)
		messages = append(messages, msg)
	}

	if len(messages) == 0 {
		return nil
	}

	if err := s.feedbackStore.IndexFeedback(ctx, details); err != nil {
		log.Error().Err(err).Msg("Failed to index feedback records, batch will be redelivered")
		return fmt.Errorf("failed indexing feedback records: %w", err)
	}

	if err := s.consumer.CommitMessages(ctx, messages...); err != nil {
		return fmt.Errorf("failed committing kafka messages: %w", err)
	}
	log.Info().Int("indexed", len(details)).Int("committed", len(messages)).Msg("Successfully processed and committed batch.")
	return nil
}
