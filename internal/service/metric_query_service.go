package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chat-insight-backend/internal/dto"
	"chat-insight-backend/internal/model"
	"chat-insight-backend/internal/repository"

	"github.com/rs/zerolog/log"
)

var ErrMetricsUnavailable = errors.New("metric store is not enabled")

var (
	allowedMetrics   = map[string]bool{model.MetricUsageEvent: true, model.MetricFeedbackEvent: true}
	allowedIntervals = map[string]bool{"1 hour": true, "6 hour": true, "1 day": true, "1 week": true}
	allowedGroupBy   = map[string]bool{"model": true, "user_name": true, "rating": true, "total": true}
	allowedDimension = map[string]bool{"model": true, "user_name": true, "rating": true}
)

type MetricQueryService interface {
	GetSummary(ctx context.Context, req dto.MetricSummaryRequest) (*dto.MetricSummaryResponse, error)
	GetTimeseries(ctx context.Context, req dto.MetricTimeseriesRequest) (*dto.MetricTimeseriesResponse, error)
	GetModels(ctx context.Context, req dto.ModelListRequest) (*dto.ModelListResponse, error)
	GetDistribution(ctx context.Context, req dto.MetricDistributionRequest) (*dto.MetricDistributionResponse, error)
}

type metricQueryService struct {
	metricRepo repository.MetricRepository
}

func NewMetricQueryService(metricRepo repository.MetricRepository) MetricQueryService {
	return &metricQueryService{
		metricRepo: metricRepo,
	}
}

func validateRange(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return errors.New("startTime and endTime are required")
	}
	if end.Before(start) {
		return errors.New("endTime cannot be before startTime")
	}
	return nil
}

func (s *metricQueryService) GetSummary(ctx context.Context, req dto.MetricSummaryRequest) (*dto.MetricSummaryResponse, error) {
	if err := validateRange(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}
	if s.metricRepo == nil {
		return nil, ErrMetricsUnavailable
	}
	log.Info().Time("start", req.StartTime).Time("end", req.EndTime).Strs("models", req.Models).Msg("Getting summary metrics")
	return s.metricRepo.GetSummaryMetrics(ctx, req)
}

func (s *metricQueryService) GetTimeseries(ctx context.Context, req dto.MetricTimeseriesRequest) (*dto.MetricTimeseriesResponse, error) {
	if err := validateRange(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}
	if !allowedMetrics[req.MetricName] {
		return nil, fmt.Errorf("invalid metricName: %s", req.MetricName)
	}
	if !allowedIntervals[req.Interval] {
		return nil, fmt.Errorf("invalid interval: %s", req.Interval)
	}
	if req.GroupBy == "" {
		req.GroupBy = "total"
	}
	if !allowedGroupBy[req.GroupBy] {
		return nil, fmt.Errorf("invalid groupBy: %s", req.GroupBy)
	}
	if s.metricRepo == nil {
		return nil, ErrMetricsUnavailable
	}

	log.Info().
		Time("start", req.StartTime).
		Time("end", req.EndTime).
		Strs("models", req.Models).
		Str("metric", req.MetricName).
		Str("interval", req.Interval).
		Str("group_by", req.GroupBy).
		Msg("Getting timeseries metrics")

	return s.metricRepo.GetTimeseriesMetrics(ctx, req)
}

func (s *metricQueryService) GetModels(ctx context.Context, req dto.ModelListRequest) (*dto.ModelListResponse, error) {
	if err := validateRange(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}
	if s.metricRepo == nil {
		return nil, ErrMetricsUnavailable
	}
	log.Info().Time("start", req.StartTime).Time("end", req.EndTime).Msg("Getting distinct models")
	return s.metricRepo.GetDistinctModels(ctx, req)
}

func (s *metricQueryService) GetDistribution(ctx context.Context, req dto.MetricDistributionRequest) (*dto.MetricDistributionResponse, error) {
	if err := validateRange(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}
	if !allowedMetrics[req.MetricName] {
		return nil, fmt.Errorf("invalid metricName: %s", req.MetricName)
	}
	if !allowedDimension[req.Dimension] {
		return nil, fmt.Errorf("invalid dimension: %s", req.Dimension)
	}
	if s.metricRepo == nil {
		return nil, ErrMetricsUnavailable
	}
	log.Info().Str("metric", req.MetricName).Str("dimension", req.Dimension).Msg("Getting metric distribution")
	return s.metricRepo.GetDistributionMetrics(ctx, req)
}
