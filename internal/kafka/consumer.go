package kafka

import (
	"context"
	"encoding/json"
	"time"

	"chat-insight-backend/config"
	"chat-insight-backend/internal/model"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
	"go.uber.org/fx"
)

// RecordConsumer reads feedback detail records published by report runs.
type RecordConsumer interface {
	FetchMessage(ctx context.Context) (*model.FeedbackDetail, kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type kafkaRecordConsumer struct {
	reader *kafka.Reader
}

// NewKafkaRecordConsumer returns a nil consumer when Kafka is disabled.
func NewKafkaRecordConsumer(lc fx.Lifecycle, cfg *config.Config) (RecordConsumer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Kafka.Brokers,
		GroupID:        cfg.Kafka.ConsumerGroup,
		Topic:          cfg.Kafka.RecordTopic,
		MinBytes:       10e3,             // 10KB
		MaxBytes:       10e6,             // 10MB
		MaxWait:        10 * time.Second,
		CommitInterval: 0,
		StartOffset:    kafka.FirstOffset,
	})
	c := &kafkaRecordConsumer{reader: reader}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info().Str("group", cfg.Kafka.ConsumerGroup).Msg("Closing Kafka consumer")
			return c.Close()
		},
	})
	log.Info().
		Strs("brokers", cfg.Kafka.Brokers).
		Str("topic", cfg.Kafka.RecordTopic).
		Str("group", cfg.Kafka.ConsumerGroup).
		Msg("Kafka consumer initialized")
	return c, nil
}

// FetchMessage returns the raw message alongside decode errors so the caller
// can still commit past a poison record.
func (c *kafkaRecordConsumer) FetchMessage(ctx context.Context) (*model.FeedbackDetail, kafka.Message, error) {
	msg, err := c.reader.FetchMessage(ctx)
	if err != nil {
		return nil, kafka.Message{}, err
	}
	log.Debug().
		Str("topic", msg.Topic).
		Int("partition", msg.Partition).
		Int64("offset", msg.Offset).
		Msg("Fetched message from Kafka")

	detail, err := decodeRecord(msg.Value)
	if err != nil {
		log.Error().Err(err).Int64("offset", msg.Offset).Msg("Failed to unmarshal Kafka message value")
		return nil, msg, err
	}
	return detail, msg, nil
}

func (c *kafkaRecordConsumer) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	if err := c.reader.CommitMessages(ctx, msgs...); err != nil {
		log.Error().Err(err).Int("count", len(msgs)).Msg("Failed to commit Kafka messages")
		return err
	}
	log.Debug().Int("count", len(msgs)).Int64("last_offset", msgs[len(msgs)-1].Offset).Msg("Committed Kafka messages")
	return nil
}

func (c *kafkaRecordConsumer) Close() error {
	return c.reader.Close()
}

func decodeRecord(value []byte) (*model.FeedbackDetail, error) {
	var detail model.FeedbackDetail
	if err := json.Unmarshal(value, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}
