package kafka

import (
	"context"
	"encoding/json"
	"errors"

	"chat-insight-backend/config"
	"chat-insight-backend/internal/model"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
	"go.uber.org/fx"
)

// RecordProducer publishes feedback details so the indexer can pick them up.
type RecordProducer interface {
	Produce(ctx context.Context, details []model.FeedbackDetail) error
	Close() error
}

type kafkaRecordProducer struct {
	writer *kafka.Writer
	topic  string
}

// NewKafkaRecordProducer returns a nil producer when Kafka is disabled.
func NewKafkaRecordProducer(lc fx.Lifecycle, cfg *config.Config) (RecordProducer, error) {
	if !cfg.Kafka.Enabled {
		log.Info().Msg("Kafka disabled, feedback records will be indexed directly")
		return nil, nil
	}
	if len(cfg.Kafka.Brokers) == 0 || cfg.Kafka.RecordTopic == "" {
		log.Error().Msg("Kafka brokers or record topic is not configured.")
		return nil, errors.New("kafka configuration missing")
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Kafka.Brokers...),
		Topic:        cfg.Kafka.RecordTopic,
		Balancer:     &kafka.Hash{},
		BatchSize:    cfg.Report.BatchSize,
		BatchTimeout: cfg.Report.MaxBatchWait,
	}
	p := &kafkaRecordProducer{
		writer: writer,
		topic:  cfg.Kafka.RecordTopic,
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Closing Kafka producer")
			return p.Close()
		},
	})
	log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.RecordTopic).Msg("Kafka producer initialized")
	return p, nil
}

func (p *kafkaRecordProducer) Produce(ctx context.Context, details []model.FeedbackDetail) error {
	messages := encodeRecords(details)
	if len(messages) == 0 {
		return nil
	}

	if err := p.writer.WriteMessages(ctx, messages...); err != nil {
		log.Error().Err(err).Int("message_count", len(messages)).Msg("Failed to write messages to Kafka")
		return err
	}

	log.Debug().Int("message_count", len(messages)).Str("topic", p.topic).Msg("Successfully produced messages to Kafka")
	return nil
}

func (p *kafkaRecordProducer) Close() error {
	return p.writer.Close()
}

// encodeRecords keys each message by feedback id so updates to one record stay on one partition.
func encodeRecords(details []model.FeedbackDetail) []kafka.Message {
	messages := make([]kafka.Message, 0, len(details))
	for _, detail := range details {
		value, err := json.Marshal(detail)
		if err != nil {
			log.Error().Err(err).Str("feedback_id", detail.FeedbackID).Msg("Failed to marshal feedback detail for Kafka")
			continue
		}
		messages = append(messages, kafka.Message{
			Key:   []byte(detail.FeedbackID),
			Value: value,
		})
	}
	return messages
}
