package model

import "time"

const (
	MetricUsageEvent    = "usage_event"
	MetricFeedbackEvent = "feedback_event"
)

type MetricEvent struct {
	Time       time.Time         `json:"time"`
	MetricName string            `json:"metric_name"`
	Model      string            `json:"model"`
	UserName   string            `json:"user_name"`
	Tags       map[string]string `json:"tags"`
}
