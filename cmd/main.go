package main

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"

	"chat-insight-backend/config"
	_ "chat-insight-backend/docs"
	"chat-insight-backend/internal/app"
	"chat-insight-backend/internal/controller"
	"chat-insight-backend/internal/elasticsearch"
	"chat-insight-backend/internal/kafka"
	"chat-insight-backend/internal/scheduler"
	"chat-insight-backend/internal/service"
	"chat-insight-backend/internal/timescaledb"
)

// @title           Chat Insight API
// @version         1.0
// @description     Usage and feedback analytics over chat conversations: report runs, metric time series and feedback search.

// @contact.name   API Support Team
// @contact.email  support@example.com

// @host      localhost:8080
// @BasePath  /
// @schemes   http https

// @tag.name         reports
// @tag.description  Report pipeline runs and summaries

// @tag.name         metrics
// @tag.description  Usage and feedback metrics from TimescaleDB

// @tag.name         feedback
// @tag.description  Feedback detail search

func main() {
	var wg sync.WaitGroup

	fxApp := fx.New(
		app.Pipeline,
		fx.Provide(
			NewGinEngine,
			timescaledb.NewTimescaleMetricRepository,
			elasticsearch.NewElasticsearchFeedbackRepository,
			kafka.NewKafkaRecordConsumer,
			service.NewMetricQueryService,
			service.NewFeedbackQueryService,
			controller.NewMetricController,
			controller.NewFeedbackController,
			controller.NewReportController,
		),
		fx.Invoke(RegisterAPIRoutes,
			RegisterScheduler,
			func(lc fx.Lifecycle, cfg *config.Config, consumer kafka.RecordConsumer, store elasticsearch.FeedbackStore) {
				startRecordConsumer(lc, &wg, cfg, consumer, store)
			},
		),
	)

	startCtx, cancelStart := context.WithTimeout(context.Background(), 2*time.Minute) // connections retry with backoff
	defer cancelStart()
	if err := fxApp.Start(startCtx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}
	<-fxApp.Done()

	stopCtx, cancelStop := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStop()
	log.Info().Msg("Shutting down application...")
	if err := fxApp.Stop(stopCtx); err != nil {
		log.Error().Err(err).Msg("Forced shutdown due to error or timeout")
	}

	log.Info().Msg("Waiting for background goroutines to finish...")
	wg.Wait()
	log.Info().Msg("All background processes finished. Exiting.")
}

func NewGinEngine() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

func RegisterAPIRoutes(
	lifecycle fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	reportController *controller.ReportController,
	metricController *controller.MetricController,
	feedbackController *controller.FeedbackController,
) {
	controller.RegisterReportRoutes(router, reportController)
	controller.RegisterMetricRoutes(router, metricController)
	controller.RegisterFeedbackRoutes(router, feedbackController)

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Starting HTTP server on port %s", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error().Err(err).Msg("HTTP server ListenAndServe error")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Shutting down HTTP server...")
			return server.Shutdown(ctx)
		},
	})
}

// --- Invoker Functions ---

func RegisterScheduler(lc fx.Lifecycle, cfg *config.Config, reportSvc service.ReportService) error {
	_, err := scheduler.NewScheduler(lc, cfg, reportSvc)
	return err
}

// startRecordConsumer runs the Kafka to Elasticsearch indexer when both are enabled.
func startRecordConsumer(lc fx.Lifecycle, wg *sync.WaitGroup, cfg *config.Config, consumer kafka.RecordConsumer, store elasticsearch.FeedbackStore) {
	if consumer == nil || store == nil {
		log.Info().Msg("Record consumer disabled (needs both Kafka and Elasticsearch)")
		return
	}
	consumerService := service.NewRecordConsumerService(consumer, store, cfg)

	wg.Add(1)
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			log.Info().Msg("Starting Record Consumer goroutine")
			go consumerService.Run(ctx, wg)
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			log.Info().Msg("Signaling Record Consumer goroutine to stop...")
			cancel()
			return nil
		},
	})
}
