package dto

import "time"

type MetricSummaryRequest struct {
	StartTime time.Time
	EndTime   time.Time
	Models    []string
}

type SortInfo struct {
	Field string // value, time or the groupBy dimension
	Order string // asc or desc
}

type MetricTimeseriesRequest struct {
	StartTime  time.Time
	EndTime    time.Time
	Models     []string
	MetricName string // usage_event or feedback_event
	Interval   string // e.g. "1 hour", "1 day"
	GroupBy    string // model, user_name, rating or total
	Sort       *SortInfo
	Limit      *int
}

type ModelListRequest struct {
	StartTime time.Time
	EndTime   time.Time
}

type MetricDistributionRequest struct {
	StartTime  time.Time
	EndTime    time.Time
	Models     []string
	MetricName string
	Dimension  string // model, user_name or rating
}
