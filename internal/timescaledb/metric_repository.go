package timescaledb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"chat-insight-backend/internal/dto"
	"chat-insight-backend/internal/model"
	"chat-insight-backend/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// dimensionColumns maps API dimensions onto SQL expressions.
var dimensionColumns = map[string]string{
	"model":     colModel,
	"user_name": colUserName,
	"rating":    "tags->>'rating'",
}

var validIntervals = map[string]bool{"1 hour": true, "6 hour": true, "1 day": true, "1 week": true}

type timescaleMetricRepository struct {
	pool       *pgxpool.Pool
	eventTable string
}

// NewTimescaleMetricRepository returns a nil repository when TimescaleDB is disabled.
func NewTimescaleMetricRepository(pool *pgxpool.Pool) repository.MetricRepository {
	if pool == nil {
		log.Warn().Msg("TimescaleDB pool is nil, metric queries are unavailable")
		return nil
	}
	return &timescaleMetricRepository{
		pool:       pool,
		eventTable: metricEventsTableName,
	}
}

// whereBuilder accumulates positional arguments for a WHERE clause.
type whereBuilder struct {
	clauses []string
	args    []interface{}
}

func (w *whereBuilder) add(clause string, args ...interface{}) {
	for _, a := range args {
		w.args = append(w.args, a)
		clause = strings.Replace(clause, "?", fmt.Sprintf("$%d", len(w.args)), 1)
	}
	w.clauses = append(w.clauses, clause)
}

func (w *whereBuilder) addIn(column string, values []string) {
	if len(values) == 0 {
		return
	}
	placeholders := make([]string, len(values))
	for i, v := range values {
		w.args = append(w.args, v)
		placeholders[i] = fmt.Sprintf("$%d", len(w.args))
	}
	w.clauses = append(w.clauses, fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholders, ",")))
}

func (w *whereBuilder) sql() string {
	return strings.Join(w.clauses, " AND ")
}

func timeRange(start, end time.Time, models []string) *whereBuilder {
	w := &whereBuilder{}
	w.add("time >= ?", start)
	w.add("time < ?", end)
	w.addIn(colModel, models)
	return w
}

func (r *timescaleMetricRepository) GetSummaryMetrics(ctx context.Context, req dto.MetricSummaryRequest) (*dto.MetricSummaryResponse, error) {
	w := timeRange(req.StartTime, req.EndTime, req.Models)
	querySQL := fmt.Sprintf(`
        SELECT
            COUNT(*) FILTER (WHERE metric_name = '%[1]s'),
            COUNT(*) FILTER (WHERE metric_name = '%[2]s'),
            COUNT(*) FILTER (WHERE metric_name = '%[2]s' AND tags->>'rating' = '%[3]s'),
            COUNT(*) FILTER (WHERE metric_name = '%[2]s' AND tags->>'rating' = '%[4]s'),
            COUNT(*) FILTER (WHERE metric_name = '%[2]s' AND tags->>'rating' = '%[5]s')
        FROM %[6]s WHERE %[7]s`,
		model.MetricUsageEvent, model.MetricFeedbackEvent,
		model.RatingGood, model.RatingBad, model.RatingImprove,
		r.eventTable, w.sql())

	resp := &dto.MetricSummaryResponse{}
	err := r.pool.QueryRow(ctx, querySQL, w.args...).Scan(
		&resp.TotalUsageEvents, &resp.TotalFeedbackEvents,
		&resp.GoodCount, &resp.BadCount, &resp.ImproveCount,
	)
	if err != nil {
		log.Error().Err(err).Str("query", querySQL).Msg("Failed to count metric events")
		return nil, fmt.Errorf("failed to get summary metrics: %w", err)
	}
	if resp.TotalUsageEvents > 0 {
		resp.FeedbackRatio = float64(resp.TotalFeedbackEvents) / float64(resp.TotalUsageEvents)
	}
	return resp, nil
}

func (r *timescaleMetricRepository) GetTimeseriesMetrics(ctx context.Context, req dto.MetricTimeseriesRequest) (*dto.MetricTimeseriesResponse, error) {
	if !validIntervals[req.Interval] {
		return nil, fmt.Errorf("invalid interval: %s", req.Interval)
	}
	groupSQL, grouped := dimensionColumns[req.GroupBy]
	if !grouped {
		groupSQL = "'total'"
	}

	w := &whereBuilder{}
	w.args = append(w.args, req.Interval)
	w.add("metric_name = ?", req.MetricName)
	w.add("time >= ?", req.StartTime)
	w.add("time < ?", req.EndTime)
	w.addIn(colModel, req.Models)

	var queryBuilder strings.Builder
	queryBuilder.WriteString(fmt.Sprintf(
		"SELECT time_bucket($1::interval, time) AS bucket, %s AS group_key, COUNT(*) AS value FROM %s WHERE %s GROUP BY bucket, group_key",
		groupSQL, r.eventTable, w.sql(),
	))

	orderBy := "bucket ASC"
	if req.Sort != nil {
		field := "bucket"
		switch {
		case req.Sort.Field == "value":
			field = "value"
		case req.Sort.Field == req.GroupBy && grouped:
			field = "group_key"
		case req.Sort.Field != "time":
			log.Warn().Str("sort_field", req.Sort.Field).Msg("Unsupported sort field requested, defaulting to time bucket.")
		}
		order := "ASC"
		if strings.EqualFold(req.Sort.Order, "desc") {
			order = "DESC"
		}
		orderBy = fmt.Sprintf("%s %s, bucket ASC", field, order)
	}
	queryBuilder.WriteString(" ORDER BY " + orderBy)
	if req.Limit != nil && *req.Limit > 0 {
		w.args = append(w.args, *req.Limit)
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", len(w.args)))
	}

	querySQL := queryBuilder.String()
	log.Debug().Str("query", querySQL).Interface("args", w.args).Msg("Executing TimescaleDB timeseries query")

	rows, err := r.pool.Query(ctx, querySQL, w.args...)
	if err != nil {
		log.Error().Err(err).Str("query", querySQL).Msg("Failed to execute timeseries query")
		return nil, fmt.Errorf("timeseries query failed: %w", err)
	}
	defer rows.Close()

	order := make([]string, 0)
	seriesMap := make(map[string][]dto.TimeseriesDataPoint)
	for rows.Next() {
		var bucket time.Time
		var groupKey *string
		var value int64
		if err := rows.Scan(&bucket, &groupKey, &value); err != nil {
			log.Error().Err(err).Msg("Failed to scan timeseries row")
			continue
		}
		key := "total"
		if grouped {
			key = fmt.Sprintf("%s_NULL", req.GroupBy)
			if groupKey != nil {
				key = *groupKey
			}
		}
		if _, exists := seriesMap[key]; !exists {
			order = append(order, key)
		}
		seriesMap[key] = append(seriesMap[key], dto.TimeseriesDataPoint{
			Timestamp: bucket.UnixMilli(),
			Value:     value,
		})
	}
	if err := rows.Err(); err != nil {
		log.Error().Err(err).Msg("Error iterating timeseries rows")
		return nil, fmt.Errorf("failed iterating query results: %w", err)
	}

	response := &dto.MetricTimeseriesResponse{Series: make([]dto.TimeseriesSeries, 0, len(order))}
	for _, name := range order {
		response.Series = append(response.Series, dto.TimeseriesSeries{Name: name, Data: seriesMap[name]})
	}
	return response, nil
}

func (r *timescaleMetricRepository) GetDistinctModels(ctx context.Context, req dto.ModelListRequest) (*dto.ModelListResponse, error) {
	querySQL := fmt.Sprintf("SELECT DISTINCT model FROM %s WHERE time >= $1 AND time < $2 ORDER BY model", r.eventTable)

	rows, err := r.pool.Query(ctx, querySQL, req.StartTime, req.EndTime)
	if err != nil {
		log.Error().Err(err).Msg("Failed to query distinct models")
		return nil, fmt.Errorf("failed getting models: %w", err)
	}
	defer rows.Close()

	models := make([]string, 0)
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			log.Error().Err(err).Msg("Failed to scan model row")
			continue
		}
		models = append(models, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating model results: %w", err)
	}
	return &dto.ModelListResponse{Models: models}, nil
}

func (r *timescaleMetricRepository) GetDistributionMetrics(ctx context.Context, req dto.MetricDistributionRequest) (*dto.MetricDistributionResponse, error) {
	column, ok := dimensionColumns[req.Dimension]
	if !ok {
		return nil, fmt.Errorf("unsupported dimension for distribution: %s", req.Dimension)
	}

	w := &whereBuilder{}
	w.add("metric_name = ?", req.MetricName)
	w.add("time >= ?", req.StartTime)
	w.add("time < ?", req.EndTime)
	w.addIn(colModel, req.Models)
	w.add(column + " IS NOT NULL")

	querySQL := fmt.Sprintf(`
        SELECT %s AS dimension_key, COUNT(*) AS value
        FROM %s
        WHERE %s
        GROUP BY dimension_key
        ORDER BY value DESC, dimension_key ASC`, column, r.eventTable, w.sql())

	log.Debug().Str("query", querySQL).Interface("args", w.args).Msg("Executing TimescaleDB distribution query")

	rows, err := r.pool.Query(ctx, querySQL, w.args...)
	if err != nil {
		log.Error().Err(err).Msg("Failed to execute distribution query")
		return nil, fmt.Errorf("distribution query failed: %w", err)
	}
	defer rows.Close()

	distribution := make([]dto.DistributionDataPoint, 0)
	for rows.Next() {
		var key string
		var value int64
		if err := rows.Scan(&key, &value); err != nil {
			log.Error().Err(err).Msg("Failed to scan distribution row")
			continue
		}
		distribution = append(distribution, dto.DistributionDataPoint{Name: key, Value: value})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating distribution results: %w", err)
	}

	return &dto.MetricDistributionResponse{
		MetricName:   req.MetricName,
		Dimension:    req.Dimension,
		Distribution: distribution,
	}, nil
}
