package controller

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"chat-insight-backend/internal/dto"
	"chat-insight-backend/internal/model"
	"chat-insight-backend/internal/service"
	"chat-insight-backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type MetricController struct {
	metricQueryService service.MetricQueryService
}

func NewMetricController(metricQueryService service.MetricQueryService) *MetricController {
	return &MetricController{
		metricQueryService: metricQueryService,
	}
}

func RegisterMetricRoutes(router *gin.Engine, controller *MetricController) {
	v1Metrics := router.Group("/api/v1/metrics")
	{
		v1Metrics.GET("/summary", controller.GetSummaryMetrics)
		v1Metrics.GET("/timeseries", controller.GetTimeseriesMetrics)
		v1Metrics.GET("/models", controller.GetModels)
		v1Metrics.GET("/distribution", controller.GetDistribution)
	}
}

// GetSummaryMetrics godoc
// @Summary      Get summary metrics
// @Description  Retrieves usage and feedback counts within a time range, optionally filtered by models.
// @Tags         metrics
// @Accept       json
// @Produce      json
// @Param        startTime    query     string  true   "Start time (ISO 8601, YYYY-MM-DD or epoch ms)"
// @Param        endTime      query     string  true   "End time (ISO 8601, YYYY-MM-DD or epoch ms)"
// @Param        models       query     string  false  "Comma-separated list of models"
// @Success      200          {object}  dto.MetricSummaryResponse "Successfully retrieved summary metrics"
// @Failure      400          {object}  model.Response "Invalid query parameters"
// @Failure      503          {object}  model.Response "Metric store disabled"
// @Failure      500          {object}  model.Response "Internal server error"
// @Router       /api/v1/metrics/summary [get]
func (c *MetricController) GetSummaryMetrics(ctx *gin.Context) {
	startTime, endTime, models, err := parseBaseQueryParams(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, model.NewResponse(err.Error(), nil))
		return
	}

	req := dto.MetricSummaryRequest{
		StartTime: startTime,
		EndTime:   endTime,
		Models:    models,
	}

	result, err := c.metricQueryService.GetSummary(ctx.Request.Context(), req)
	if err != nil {
		log.Error().Err(err).Msg("Error getting summary metrics")
		respondQueryError(ctx, err, "Failed to get summary metrics")
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// GetTimeseriesMetrics godoc
// @Summary      Get timeseries metrics
// @Description  Retrieves usage or feedback events bucketed over an interval and optionally grouped by a dimension.
// @Tags         metrics
// @Accept       json
// @Produce      json
// @Param        startTime    query     string  true   "Start time (ISO 8601, YYYY-MM-DD or epoch ms)"
// @Param        endTime      query     string  true   "End time (ISO 8601, YYYY-MM-DD or epoch ms)"
// @Param        models       query     string  false  "Comma-separated list of models"
// @Param        metricName   query     string  true   "Metric name" Enums(usage_event, feedback_event)
// @Param        interval     query     string  true   "Bucket width" Enums(1 hour, 6 hour, 1 day, 1 week)
// @Param        groupBy      query     string  false  "Dimension to group by" Enums(model, user_name, rating, total)
// @Param        sortBy       query     string  false  "Sort field (time, value or the groupBy dimension)"
// @Param        sortOrder    query     string  false  "Sort order" Enums(asc, desc)
// @Param        limit        query     int     false  "Maximum number of rows"
// @Success      200          {object}  dto.MetricTimeseriesResponse "Successfully retrieved timeseries metrics"
// @Failure      400          {object}  model.Response "Invalid query parameters"
// @Failure      503          {object}  model.Response "Metric store disabled"
// @Failure      500          {object}  model.Response "Internal server error"
// @Router       /api/v1/metrics/timeseries [get]
func (c *MetricController) GetTimeseriesMetrics(ctx *gin.Context) {
	startTime, endTime, models, err := parseBaseQueryParams(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, model.NewResponse(err.Error(), nil))
		return
	}

	metricName := ctx.Query("metricName")
	interval := ctx.Query("interval")
	groupBy := ctx.DefaultQuery("groupBy", "total")

	if metricName == "" {
		ctx.JSON(http.StatusBadRequest, model.NewResponse("metricName is required", nil))
		return
	}
	if interval == "" {
		ctx.JSON(http.StatusBadRequest, model.NewResponse("interval is required", nil))
		return
	}

	req := dto.MetricTimeseriesRequest{
		StartTime:  startTime,
		EndTime:    endTime,
		Models:     models,
		MetricName: metricName,
		Interval:   interval,
		GroupBy:    groupBy,
	}
	if sortBy := ctx.Query("sortBy"); sortBy != "" {
		req.Sort = &dto.SortInfo{Field: sortBy, Order: ctx.DefaultQuery("sortOrder", "asc")}
	}
	if limitStr := ctx.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			ctx.JSON(http.StatusBadRequest, model.NewResponse("limit must be a positive integer", nil))
			return
		}
		req.Limit = &limit
	}

	result, err := c.metricQueryService.GetTimeseries(ctx.Request.Context(), req)
	if err != nil {
		log.Error().Err(err).Msg("Error getting timeseries metrics")
		respondQueryError(ctx, err, "Failed to get timeseries metrics")
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// GetModels godoc
// @Summary      Get distinct models
// @Description  Retrieves the models that have metric events within a time range.
// @Tags         metrics
// @Accept       json
// @Produce      json
// @Param        startTime    query     string  true   "Start time (ISO 8601, YYYY-MM-DD or epoch ms)"
// @Param        endTime      query     string  true   "End time (ISO 8601, YYYY-MM-DD or epoch ms)"
// @Success      200          {object}  dto.ModelListResponse "Successfully retrieved model list"
// @Failure      400          {object}  model.Response "Invalid query parameters"
// @Failure      503          {object}  model.Response "Metric store disabled"
// @Failure      500          {object}  model.Response "Internal server error"
// @Router       /api/v1/metrics/models [get]
func (c *MetricController) GetModels(ctx *gin.Context) {
	startTime, endTime, _, err := parseBaseQueryParams(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, model.NewResponse(err.Error(), nil))
		return
	}

	req := dto.ModelListRequest{
		StartTime: startTime,
		EndTime:   endTime,
	}

	result, err := c.metricQueryService.GetModels(ctx.Request.Context(), req)
	if err != nil {
		log.Error().Err(err).Msg("Error getting models")
		respondQueryError(ctx, err, "Failed to get models")
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// GetDistribution godoc
// @Summary      Get metric distribution
// @Description  Counts usage or feedback events per model, user or rating.
// @Tags         metrics
// @Accept       json
// @Produce      json
// @Param        startTime    query     string  true   "Start time (ISO 8601, YYYY-MM-DD or epoch ms)"
// @Param        endTime      query     string  true   "End time (ISO 8601, YYYY-MM-DD or epoch ms)"
// @Param        models       query     string  false  "Comma-separated list of models"
// @Param        metricName   query     string  true   "Metric name" Enums(usage_event, feedback_event)
// @Param        dimension    query     string  true   "Dimension" Enums(model, user_name, rating)
// @Success      200          {object}  dto.MetricDistributionResponse "Successfully retrieved distribution"
// @Failure      400          {object}  model.Response "Invalid query parameters"
// @Failure      503          {object}  model.Response "Metric store disabled"
// @Failure      500          {object}  model.Response "Internal server error"
// @Router       /api/v1/metrics/distribution [get]
func (c *MetricController) GetDistribution(ctx *gin.Context) {
	startTime, endTime, models, err := parseBaseQueryParams(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, model.NewResponse(err.Error(), nil))
		return
	}

	req := dto.MetricDistributionRequest{
		StartTime:  startTime,
		EndTime:    endTime,
		Models:     models,
		MetricName: ctx.DefaultQuery("metricName", model.MetricFeedbackEvent),
		Dimension:  ctx.Query("dimension"),
	}
	if req.Dimension == "" {
		ctx.JSON(http.StatusBadRequest, model.NewResponse("dimension is required", nil))
		return
	}

	result, err := c.metricQueryService.GetDistribution(ctx.Request.Context(), req)
	if err != nil {
		log.Error().Err(err).Msg("Error getting metric distribution")
		respondQueryError(ctx, err, "Failed to get metric distribution")
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// respondQueryError maps validation failures to 400 and disabled backends to 503.
func respondQueryError(ctx *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrMetricsUnavailable), errors.Is(err, service.ErrSearchUnavailable):
		ctx.JSON(http.StatusServiceUnavailable, model.NewResponse(err.Error(), nil))
	case strings.Contains(err.Error(), "invalid"), strings.Contains(err.Error(), "required"), strings.Contains(err.Error(), "cannot be before"):
		ctx.JSON(http.StatusBadRequest, model.NewResponse(err.Error(), nil))
	default:
		ctx.JSON(http.StatusInternalServerError, model.NewResponse(fallback, nil))
	}
}

func parseBaseQueryParams(ctx *gin.Context) (time.Time, time.Time, []string, error) {
	startTimeStr := ctx.Query("startTime")
	endTimeStr := ctx.Query("endTime")

	if startTimeStr == "" || endTimeStr == "" {
		return time.Time{}, time.Time{}, nil, errors.New("startTime and endTime are required query parameters")
	}

	startTime, errStart := util.ParseTimeFlexible(startTimeStr)
	endTime, errEnd := util.ParseTimeFlexible(endTimeStr)
	if errStart != nil || errEnd != nil {
		return time.Time{}, time.Time{}, nil, errors.New("invalid startTime or endTime format. Use ISO 8601, YYYY-MM-DD or epoch milliseconds")
	}
	if endTime.Before(startTime) {
		return time.Time{}, time.Time{}, nil, errors.New("endTime cannot be before startTime")
	}

	return startTime, endTime, splitQueryList(ctx.Query("models")), nil
}

func splitQueryList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
