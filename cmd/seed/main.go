package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"chat-insight-backend/config"
	"chat-insight-backend/internal/database"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// feedbackIndexMapping keeps the filterable fields as keywords next to the analysed text.
const feedbackIndexMapping = `{
  "mappings": {
    "properties": {
      "feedback_id":    {"type": "keyword"},
      "message_id":     {"type": "keyword"},
      "created_at":     {"type": "date"},
      "rating_score":   {"type": "float"},
      "good_or_bad":    {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
      "model":          {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
      "user_name":      {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
      "rating_comment": {"type": "text"},
      "query":          {"type": "text"},
      "answer":         {"type": "text"}
    }
  }
}`

func main() {
	chats := flag.Int("chats", 60, "number of conversations to generate")
	days := flag.Int("days", 30, "spread conversations over this many past days")
	seed := flag.Int64("seed", 42, "random seed")
	migrate := flag.Bool("migrate", true, "create the chat, feedback and user tables if missing")
	createIndex := flag.Bool("create-index", false, "create the Elasticsearch feedback index with its mapping")
	flag.Parse()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	db, err := database.NewDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to source database")
	}
	if *migrate {
		if err := db.AutoMigrate(&database.UserRow{}, &database.ChatRow{}, &database.FeedbackRow{}); err != nil {
			log.Fatal().Err(err).Msg("Failed to migrate source tables")
		}
	}

	data, err := generate(rand.New(rand.NewSource(*seed)), *chats, *days, time.Now())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to generate seed data")
	}
	if err := insert(db, data); err != nil {
		log.Fatal().Err(err).Msg("Failed to insert seed data")
	}
	log.Info().
		Int("users", len(data.Users)).
		Int("chats", len(data.Chats)).
		Int("feedback", len(data.Feedback)).
		Msg("Seed data inserted")

	if *createIndex {
		if err := createFeedbackIndex(cfg); err != nil {
			log.Fatal().Err(err).Msg("Failed to create feedback index")
		}
	}
}

func insert(db *gorm.DB, data seedData) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.CreateInBatches(data.Users, 100).Error; err != nil {
			return err
		}
		if err := tx.CreateInBatches(data.Chats, 100).Error; err != nil {
			return err
		}
		if len(data.Feedback) == 0 {
			return nil
		}
		return tx.CreateInBatches(data.Feedback, 100).Error
	})
}

func createFeedbackIndex(cfg *config.Config) error {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Elasticsearch.Addresses,
		Username:  cfg.Elasticsearch.Username,
		Password:  cfg.Elasticsearch.Password,
	})
	if err != nil {
		return err
	}

	req := esapi.IndicesCreateRequest{
		Index: cfg.Elasticsearch.FeedbackIndex,
		Body:  strings.NewReader(feedbackIndexMapping),
	}
	res, err := req.Do(context.Background(), es)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		if strings.Contains(res.String(), "resource_already_exists_exception") {
			log.Info().Str("index", cfg.Elasticsearch.FeedbackIndex).Msg("Feedback index already exists")
			return nil
		}
		log.Error().Str("response", res.String()).Msg("Error response from Elasticsearch")
		return fmt.Errorf("index create returned %s", res.Status())
	}
	log.Info().Str("index", cfg.Elasticsearch.FeedbackIndex).Msg("Feedback index created")
	return nil
}
