package app

import (
	"chat-insight-backend/config"
	"chat-insight-backend/internal/cache"
	"chat-insight-backend/internal/database"
	"chat-insight-backend/internal/elasticsearch"
	"chat-insight-backend/internal/export"
	"chat-insight-backend/internal/feedback"
	"chat-insight-backend/internal/filter"
	"chat-insight-backend/internal/flattener"
	"chat-insight-backend/internal/kafka"
	"chat-insight-backend/internal/metrics"
	"chat-insight-backend/internal/service"
	"chat-insight-backend/internal/timescaledb"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"
)

// Pipeline provides everything the report run needs, from the source
// database down to the metric, search and cache sinks.
var Pipeline = fx.Options(
	fx.Provide(
		config.NewConfig,
		database.ProvideSourceRepository,
		NewUserFilter,
		NewModelNormalizer,
		NewReportWriter,
		flattener.NewFlattener,
		feedback.NewResolver,
		NewAggregator,
		metrics.NewReportExtractor,
		timescaledb.ProvideTimescaleDBPool,
		kafka.NewKafkaRecordProducer,
		elasticsearch.NewElasticFeedbackStore,
		cache.NewSummaryCache,
		service.NewReportService,
	),
	fx.Invoke(SetLogLevel),
)

func NewUserFilter(cfg *config.Config) *filter.UserFilter {
	return filter.NewUserFilter(cfg.Report.UserDenylist)
}

func NewModelNormalizer(cfg *config.Config) *filter.ModelNormalizer {
	return filter.NewModelNormalizer(cfg.Report.ModelAliases, cfg.Report.DeprecatedModels)
}

func NewAggregator(cfg *config.Config, models *filter.ModelNormalizer) metrics.Aggregator {
	return metrics.NewAggregator(models, cfg.Report.Location)
}

func NewReportWriter(cfg *config.Config) export.Writer {
	return export.NewWriter(cfg.Report.OutputDir, cfg.Report.Location)
}

func SetLogLevel(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("Unknown LOG_LEVEL, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}
