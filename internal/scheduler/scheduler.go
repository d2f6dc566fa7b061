package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chat-insight-backend/config"
	"chat-insight-backend/internal/service"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"
)

var cronParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.DowOptional | cron.Descriptor)

// NewScheduler registers the nightly report run. An empty schedule disables it.
func NewScheduler(lc fx.Lifecycle, cfg *config.Config, reportSvc service.ReportService) (*cron.Cron, error) {
	schedule := cfg.Report.Schedule
	if schedule == "" {
		log.Info().Msg("Report schedule is empty, scheduled runs disabled")
		return nil, nil
	}

	loc := cfg.Report.Location
	if loc == nil {
		loc = time.Local
	}
	c := cron.New(cron.WithParser(cronParser), cron.WithLocation(loc))
	_, err := c.AddFunc(schedule, func() { runScheduledReport(reportSvc) })
	if err != nil {
		log.Error().Err(err).Str("schedule", schedule).Msg("Failed to add cron job")
		return nil, fmt.Errorf("invalid REPORT_SCHEDULE %q: %w", schedule, err)
	}
	log.Info().Str("schedule", schedule).Msg("Scheduled report job")

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msg("Starting cron scheduler")
			c.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Stopping cron scheduler...")
			stopCtx := c.Stop()
			select {
			case <-stopCtx.Done():
				log.Info().Msg("Cron scheduler stopped gracefully.")
				return nil
			case <-ctx.Done():
				log.Error().Msg("Context cancelled while waiting for cron scheduler to stop.")
				return ctx.Err()
			}
		},
	})

	return c, nil
}

func runScheduledReport(reportSvc service.ReportService) {
	result, err := reportSvc.Run(context.Background(), time.Time{})
	if err != nil {
		if errors.Is(err, service.ErrRunInProgress) {
			log.Warn().Msg("Skipping scheduled report, previous run still in progress")
			return
		}
		log.Error().Err(err).Msg("Error during scheduled report run")
		return
	}
	log.Info().Str("run_id", result.RunID).Str("date", result.Date).Msg("Scheduled report run finished")
}
