package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"chat-insight-backend/internal/dto"
	"chat-insight-backend/internal/export"
	"chat-insight-backend/internal/model"
	"chat-insight-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubMetricService struct {
	lastTimeseries dto.MetricTimeseriesRequest
	err            error
}

func (s *stubMetricService) GetSummary(_ context.Context, req dto.MetricSummaryRequest) (*dto.MetricSummaryResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.MetricSummaryResponse{TotalUsageEvents: int64(len(req.Models))}, nil
}

func (s *stubMetricService) GetTimeseries(_ context.Context, req dto.MetricTimeseriesRequest) (*dto.MetricTimeseriesResponse, error) {
	s.lastTimeseries = req
	if s.err != nil {
		return nil, s.err
	}
	return &dto.MetricTimeseriesResponse{Series: []dto.TimeseriesSeries{}}, nil
}

func (s *stubMetricService) GetModels(context.Context, dto.ModelListRequest) (*dto.ModelListResponse, error) {
	return &dto.ModelListResponse{Models: []string{"gpt-4"}}, s.err
}

func (s *stubMetricService) GetDistribution(_ context.Context, req dto.MetricDistributionRequest) (*dto.MetricDistributionResponse, error) {
	return &dto.MetricDistributionResponse{MetricName: req.MetricName, Dimension: req.Dimension}, s.err
}

type stubFeedbackService struct {
	last dto.FeedbackSearchRequest
}

func (s *stubFeedbackService) SearchFeedback(_ context.Context, req dto.FeedbackSearchRequest) (*dto.FeedbackSearchResponse, error) {
	s.last = req
	return &dto.FeedbackSearchResponse{Feedback: []model.FeedbackDetail{}, Page: req.Page, Size: req.Size}, nil
}

type stubReportService struct {
	runDate    time.Time
	runErr     error
	summaryErr error
}

func (s *stubReportService) Run(_ context.Context, date time.Time) (*model.ReportResult, error) {
	s.runDate = date
	if s.runErr != nil {
		return nil, s.runErr
	}
	return &model.ReportResult{RunID: "run-1", Date: "2024-05-02"}, nil
}

func (s *stubReportService) LatestSummary(context.Context) (*dto.SummaryResponse, error) {
	if s.summaryErr != nil {
		return nil, s.summaryErr
	}
	return &dto.SummaryResponse{Date: "2024-05-02", Source: "file", Summary: &model.Summary{}}, nil
}

func newRouter(metricSvc service.MetricQueryService, feedbackSvc service.FeedbackQueryService, reportSvc service.ReportService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterMetricRoutes(r, NewMetricController(metricSvc))
	RegisterFeedbackRoutes(r, NewFeedbackController(feedbackSvc))
	RegisterReportRoutes(r, NewReportController(reportSvc))
	return r
}

func do(r *gin.Engine, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestMetricController(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		serviceErr error
		wantStatus int
	}{
		{name: "summary ok", target: "/api/v1/metrics/summary?startTime=2024-05-01&endTime=2024-05-08&models=gpt-4,%20claude", wantStatus: http.StatusOK},
		{name: "summary missing range", target: "/api/v1/metrics/summary", wantStatus: http.StatusBadRequest},
		{name: "summary bad time", target: "/api/v1/metrics/summary?startTime=x&endTime=y", wantStatus: http.StatusBadRequest},
		{name: "summary inverted", target: "/api/v1/metrics/summary?startTime=2024-05-08&endTime=2024-05-01", wantStatus: http.StatusBadRequest},
		{name: "summary store disabled", target: "/api/v1/metrics/summary?startTime=2024-05-01&endTime=2024-05-08", serviceErr: service.ErrMetricsUnavailable, wantStatus: http.StatusServiceUnavailable},
		{name: "summary backend error", target: "/api/v1/metrics/summary?startTime=2024-05-01&endTime=2024-05-08", serviceErr: errors.New("connection refused"), wantStatus: http.StatusInternalServerError},
		{name: "timeseries missing metric", target: "/api/v1/metrics/timeseries?startTime=2024-05-01&endTime=2024-05-08&interval=1%20day", wantStatus: http.StatusBadRequest},
		{name: "timeseries bad limit", target: "/api/v1/metrics/timeseries?startTime=2024-05-01&endTime=2024-05-08&metricName=usage_event&interval=1%20day&limit=-3", wantStatus: http.StatusBadRequest},
		{name: "timeseries invalid from service", target: "/api/v1/metrics/timeseries?startTime=2024-05-01&endTime=2024-05-08&metricName=x&interval=1%20day", serviceErr: errors.New("invalid metricName: x"), wantStatus: http.StatusBadRequest},
		{name: "models ok", target: "/api/v1/metrics/models?startTime=2024-05-01&endTime=2024-05-08", wantStatus: http.StatusOK},
		{name: "distribution missing dimension", target: "/api/v1/metrics/distribution?startTime=2024-05-01&endTime=2024-05-08", wantStatus: http.StatusBadRequest},
		{name: "distribution ok", target: "/api/v1/metrics/distribution?startTime=2024-05-01&endTime=2024-05-08&dimension=rating", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(&stubMetricService{err: tt.serviceErr}, &stubFeedbackService{}, &stubReportService{})
			w := do(r, http.MethodGet, tt.target)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
		})
	}
}

func TestMetricController_TimeseriesParams(t *testing.T) {
	svc := &stubMetricService{}
	r := newRouter(svc, &stubFeedbackService{}, &stubReportService{})

	w := do(r, http.MethodGet, "/api/v1/metrics/timeseries?startTime=2024-05-01&endTime=2024-05-08&metricName=usage_event&interval=1%20day&groupBy=model&sortBy=value&sortOrder=desc&limit=5&models=gpt-4")
	require.Equal(t, http.StatusOK, w.Code)

	req := svc.lastTimeseries
	assert.Equal(t, "model", req.GroupBy)
	assert.Equal(t, []string{"gpt-4"}, req.Models)
	require.NotNil(t, req.Sort)
	assert.Equal(t, "value", req.Sort.Field)
	assert.Equal(t, "desc", req.Sort.Order)
	require.NotNil(t, req.Limit)
	assert.Equal(t, 5, *req.Limit)
}

func TestFeedbackController(t *testing.T) {
	svc := &stubFeedbackService{}
	r := newRouter(&stubMetricService{}, svc, &stubReportService{})

	w := do(r, http.MethodGet, "/api/v1/feedback?startTime=2024-05-01&endTime=2024-05-08&ratings=bad,improve&users=alice&query=timeout&page=0&size=abc")
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, []string{"bad", "improve"}, svc.last.Ratings)
	assert.Equal(t, []string{"alice"}, svc.last.Users)
	assert.Equal(t, "timeout", svc.last.Query)
	assert.Equal(t, 1, svc.last.Page)
	assert.Equal(t, 50, svc.last.Size)

	w = do(r, http.MethodGet, "/api/v1/feedback")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportController_Run(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		runErr     error
		wantStatus int
	}{
		{name: "ok with date", target: "/api/v1/reports/run?date=2024-05-02", wantStatus: http.StatusOK},
		{name: "ok without date", target: "/api/v1/reports/run", wantStatus: http.StatusOK},
		{name: "bad date", target: "/api/v1/reports/run?date=May", wantStatus: http.StatusBadRequest},
		{name: "already running", target: "/api/v1/reports/run", runErr: service.ErrRunInProgress, wantStatus: http.StatusConflict},
		{name: "stage failure", target: "/api/v1/reports/run", runErr: &service.StageError{Stage: service.StageFetchChats, Err: errors.New("db down")}, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubReportService{runErr: tt.runErr}
			r := newRouter(&stubMetricService{}, &stubFeedbackService{}, svc)
			w := do(r, http.MethodPost, tt.target)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())

			if tt.wantStatus == http.StatusOK {
				var resp struct {
					Message string             `json:"message"`
					Data    model.ReportResult `json:"data"`
				}
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, "run-1", resp.Data.RunID)
			}
			if tt.runErr != nil && tt.wantStatus == http.StatusInternalServerError {
				assert.Contains(t, w.Body.String(), service.StageFetchChats)
			}
		})
	}
}

func TestReportController_Summary(t *testing.T) {
	r := newRouter(&stubMetricService{}, &stubFeedbackService{}, &stubReportService{})
	w := do(r, http.MethodGet, "/api/v1/reports/summary")
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.SummaryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "file", resp.Source)

	r = newRouter(&stubMetricService{}, &stubFeedbackService{}, &stubReportService{summaryErr: export.ErrNoReport})
	w = do(r, http.MethodGet, "/api/v1/reports/summary")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
