package repository

import (
	"context"

	"chat-insight-backend/internal/dto"
)

type MetricRepository interface {
	GetSummaryMetrics(ctx context.Context, req dto.MetricSummaryRequest) (*dto.MetricSummaryResponse, error)
	GetTimeseriesMetrics(ctx context.Context, req dto.MetricTimeseriesRequest) (*dto.MetricTimeseriesResponse, error)
	GetDistinctModels(ctx context.Context, req dto.ModelListRequest) (*dto.ModelListResponse, error)
	GetDistributionMetrics(ctx context.Context, req dto.MetricDistributionRequest) (*dto.MetricDistributionResponse, error)
}
