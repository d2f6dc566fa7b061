package metrics

import (
	"strconv"

	"chat-insight-backend/internal/filter"
	"chat-insight-backend/internal/model"
)

// Extractor turns report rows into time-series events. It applies the same
// cleaning as the aggregator so the stored series agree with the summary.
type Extractor interface {
	ExtractMetricEvents(pairs []model.QAPair, feedback []model.ResolvedFeedback) []model.MetricEvent
}

type reportExtractor struct {
	models *filter.ModelNormalizer
}

func NewReportExtractor(models *filter.ModelNormalizer) Extractor {
	return &reportExtractor{models: models}
}

func (e *reportExtractor) ExtractMetricEvents(pairs []model.QAPair, feedback []model.ResolvedFeedback) []model.MetricEvent {
	usage := usageRows(pairs, e.models)
	fbs := feedbackRows(feedback, e.models)
	events := make([]model.MetricEvent, 0, len(usage)+len(fbs))

	for _, u := range usage {
		events = append(events, model.MetricEvent{
			Time:       u.at,
			MetricName: model.MetricUsageEvent,
			Model:      u.model,
			UserName:   u.user,
			Tags: map[string]string{
				"chat_id":          u.chatID,
				"user_text_length": strconv.Itoa(u.userLength),
				"ai_text_length":   strconv.Itoa(u.aiLength),
			},
		})
	}
	for _, f := range fbs {
		events = append(events, model.MetricEvent{
			Time:       f.at,
			MetricName: model.MetricFeedbackEvent,
			Model:      f.model,
			UserName:   f.user,
			Tags: map[string]string{
				"rating": string(f.rating),
			},
		})
	}
	return events
}
