package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"chat-insight-backend/config"
	"chat-insight-backend/internal/app"
	"chat-insight-backend/internal/service"
	"chat-insight-backend/internal/util"

	"github.com/rs/zerolog/log"
	"go.uber.org/fx"
)

func main() {
	output := flag.String("output", "", "output directory (overrides REPORT_OUTPUT_DIR)")
	date := flag.String("date", "", "report date YYYY-MM-DD (defaults to today)")
	flag.Parse()

	var runDate time.Time
	if *date != "" {
		var err error
		if runDate, err = util.ParseDay(*date); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
	}

	var reportSvc service.ReportService
	fxApp := fx.New(
		app.Pipeline,
		fx.Decorate(func(cfg *config.Config) *config.Config {
			if *output != "" {
				cfg.Report.OutputDir = *output
			}
			return cfg
		}),
		fx.Populate(&reportSvc),
		fx.NopLogger,
	)

	startCtx, cancelStart := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancelStart()
	if err := fxApp.Start(startCtx); err != nil {
		log.Error().Err(err).Msg("Failed to initialise report pipeline")
		os.Exit(1)
	}

	result, runErr := reportSvc.Run(context.Background(), runDate)

	// Stopping flushes the Elasticsearch bulk indexer and the Kafka writer.
	stopCtx, cancelStop := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStop()
	if err := fxApp.Stop(stopCtx); err != nil {
		log.Warn().Err(err).Msg("Error while shutting down sinks")
	}

	if runErr != nil {
		var stageErr *service.StageError
		if errors.As(runErr, &stageErr) {
			fmt.Fprintf(os.Stderr, "report failed at stage %s: %v\n", stageErr.Stage, stageErr.Err)
		} else {
			fmt.Fprintf(os.Stderr, "report failed: %v\n", runErr)
		}
		os.Exit(1)
	}

	result.Summary = nil
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		log.Error().Err(err).Msg("Failed to print run result")
	}
}
