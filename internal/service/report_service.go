package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"chat-insight-backend/config"
	"chat-insight-backend/internal/cache"
	"chat-insight-backend/internal/dto"
	"chat-insight-backend/internal/elasticsearch"
	"chat-insight-backend/internal/export"
	"chat-insight-backend/internal/feedback"
	"chat-insight-backend/internal/flattener"
	"chat-insight-backend/internal/kafka"
	"chat-insight-backend/internal/metrics"
	"chat-insight-backend/internal/model"
	"chat-insight-backend/internal/pairing"
	"chat-insight-backend/internal/repository"
	"chat-insight-backend/internal/timescaledb"
	"chat-insight-backend/internal/util"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"
)

const (
	StageFetchChats    = "fetch_chats"
	StageFetchFeedback = "fetch_feedback"
	StageWriteOutput   = "write_output"
	StageStoreMetrics  = "store_metrics"
)

var ErrRunInProgress = errors.New("a report run is already in progress")

// StageError marks a failure that aborted a report run.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("report stage %s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

type ReportService interface {
	// Run builds the report for the given day. A zero date means today.
	Run(ctx context.Context, date time.Time) (*model.ReportResult, error)
	LatestSummary(ctx context.Context) (*dto.SummaryResponse, error)
}

// ReportServiceParams lists the pipeline stages and sinks. MetricStore,
// Producer and FeedbackStore are nil when their backend is disabled.
type ReportServiceParams struct {
	fx.In

	Config        *config.Config
	Source        repository.SourceRepository
	Flattener     flattener.Flattener
	Resolver      feedback.Resolver
	Aggregator    metrics.Aggregator
	Extractor     metrics.Extractor
	Writer        export.Writer
	Cache         cache.SummaryCache
	MetricStore   timescaledb.MetricStore     `optional:"true"`
	Producer      kafka.RecordProducer        `optional:"true"`
	FeedbackStore elasticsearch.FeedbackStore `optional:"true"`
}

type reportService struct {
	p           ReportServiceParams
	loc         *time.Location
	processLock sync.Mutex
}

func NewReportService(p ReportServiceParams) ReportService {
	loc := time.Local
	if p.Config != nil && p.Config.Report.Location != nil {
		loc = p.Config.Report.Location
	}
	return &reportService{p: p, loc: loc}
}

func (s *reportService) Run(ctx context.Context, date time.Time) (*model.ReportResult, error) {
	if !s.processLock.TryLock() {
		log.Warn().Msg("Report run already in progress, skipping.")
		return nil, ErrRunInProgress
	}
	defer s.processLock.Unlock()

	if date.IsZero() {
		date = time.Now()
	}
	result := &model.ReportResult{
		RunID:     uuid.NewString(),
		Date:      util.Day(date, s.loc),
		StartedAt: time.Now(),
	}
	logger := log.With().Str("run_id", result.RunID).Str("date", result.Date).Logger()
	logger.Info().Msg("Starting report run...")

	chats, err := s.p.Source.FetchChats(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to fetch chats")
		return nil, &StageError{Stage: StageFetchChats, Err: err}
	}
	rawFeedback, err := s.p.Source.FetchFeedback(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to fetch feedback")
		return nil, &StageError{Stage: StageFetchFeedback, Err: err}
	}

	messages, flatStats := s.p.Flattener.Flatten(chats)
	pairs := pairing.Pair(messages)
	resolved, fbStats := s.p.Resolver.Resolve(rawFeedback)
	summary := s.p.Aggregator.Aggregate(pairs, resolved)

	result.Conversations = flatStats.Conversations
	result.SkippedConversations = flatStats.Skipped
	result.Messages = flatStats.Messages
	result.QAPairs = len(pairs)
	result.FeedbackEvents = fbStats.Resolved
	result.SkippedFeedback = fbStats.Skipped
	result.Summary = &summary

	files, err := s.p.Writer.WriteReport(export.Report{
		Date:     result.Date,
		Pairs:    pairs,
		Feedback: resolved,
		Summary:  summary,
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to write report files")
		return nil, &StageError{Stage: StageWriteOutput, Err: err}
	}
	result.Files = files

	if s.p.MetricStore != nil {
		events := s.p.Extractor.ExtractMetricEvents(pairs, resolved)
		if err := s.p.MetricStore.ReplaceMetricEvents(ctx, events); err != nil {
			logger.Error().Err(err).Msg("Failed to store metric events")
			return nil, &StageError{Stage: StageStoreMetrics, Err: err}
		}
	}

	s.publishDetails(ctx, resolved)

	if err := s.p.Cache.Set(ctx, result.Date, summary); err != nil {
		logger.Warn().Err(err).Msg("Failed to cache summary")
	}

	result.FinishedAt = time.Now()
	logger.Info().
		Int("conversations", result.Conversations).
		Int("skipped_conversations", result.SkippedConversations).
		Int("qa_pairs", result.QAPairs).
		Int("feedback", result.FeedbackEvents).
		Int("skipped_feedback", result.SkippedFeedback).
		Dur("duration", result.FinishedAt.Sub(result.StartedAt)).
		Msg("Report run finished")
	return result, nil
}

// publishDetails hands the feedback details to Kafka when enabled, otherwise
// indexes them straight into Elasticsearch. Failures here do not fail the run.
func (s *reportService) publishDetails(ctx context.Context, resolved []model.ResolvedFeedback) {
	if len(resolved) == 0 {
		return
	}
	details := make([]model.FeedbackDetail, len(resolved))
	for i, fb := range resolved {
		details[i] = fb.Detail()
	}

	switch {
	case s.p.Producer != nil:
		if err := s.p.Producer.Produce(ctx, details); err != nil {
			log.Error().Err(err).Int("count", len(details)).Msg("Failed to publish feedback records")
		}
	case s.p.FeedbackStore != nil:
		if err := s.p.FeedbackStore.IndexFeedback(ctx, details); err != nil {
			log.Error().Err(err).Int("count", len(details)).Msg("Failed to index feedback details")
		}
	}
}

func (s *reportService) LatestSummary(ctx context.Context) (*dto.SummaryResponse, error) {
	summary, date, err := s.p.Cache.Get(ctx)
	if err == nil {
		return &dto.SummaryResponse{Date: date, Source: "cache", Summary: summary}, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		log.Warn().Err(err).Msg("Summary cache read failed, falling back to report files")
	}

	summary, date, err = s.p.Writer.LatestSummary()
	if err != nil {
		return nil, err
	}
	return &dto.SummaryResponse{Date: date, Source: "file", Summary: summary}, nil
}
