package dto

type MetricSummaryResponse struct {
	TotalUsageEvents    int64   `json:"totalUsageEvents"`
	TotalFeedbackEvents int64   `json:"totalFeedbackEvents"`
	GoodCount           int64   `json:"goodCount"`
	BadCount            int64   `json:"badCount"`
	ImproveCount        int64   `json:"improveCount"`
	FeedbackRatio       float64 `json:"feedbackRatio"`
}

type TimeseriesDataPoint struct {
	Timestamp int64 `json:"timestamp"` // Epoch Milliseconds
	Value     int64 `json:"value"`
}

// TimeseriesSeries is one line of a chart, named after its group (a model, a user or a rating).
type TimeseriesSeries struct {
	Name string                `json:"name"`
	Data []TimeseriesDataPoint `json:"data"`
}

type MetricTimeseriesResponse struct {
	Series []TimeseriesSeries `json:"series"`
}

type ModelListResponse struct {
	Models []string `json:"models"`
}

type DistributionDataPoint struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

type MetricDistributionResponse struct {
	MetricName   string                  `json:"metricName"`
	Dimension    string                  `json:"dimension"`
	Distribution []DistributionDataPoint `json:"distribution"`
}
