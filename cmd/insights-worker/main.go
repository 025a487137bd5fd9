package main

import (
	"context"
	"os"
	"time"

	"raseed/internal/cli"
	"raseed/internal/log"
	"raseed/internal/worker"
)

func main() {
	cfg, logger := cli.Bootstrap()
	logger.Info("Starting insights-worker")

	app, err := cli.BuildApp(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("Failed to build application", log.FieldError, err)
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(context.Context) {
		if err := app.Close(); err != nil {
			logger.Error("Failed to release resources", log.FieldError, err)
		}
	})

	logger.Info("Insight generation configured",
		"interval", cfg.InsightsInterval,
		"sqlite_db", cfg.SQLiteDBPath,
		"issuer_id", cfg.WalletIssuerID)

	sched := worker.NewScheduler("insights", cfg.InsightsInterval, func(ctx context.Context, _ time.Time) error {
		in, err := app.Insights.Generate(ctx)
		if err != nil {
			return err
		}
		logger.Info("Insight pass refreshed", log.FieldInsightID, in.ID, log.FieldPassID, in.PassID)
		return nil
	}, worker.WithLogger(logger.WithComponent(log.ComponentWorker)))

	if err := sched.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("Scheduler stopped", log.FieldError, err)
	}
	cli.WaitForShutdown(ctx, done)
}
