package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"raseed/internal/cli"
	apphttp "raseed/internal/http"
	"raseed/internal/log"
	"raseed/internal/worker"
)

func main() {
	cfg, logger := cli.Bootstrap()

	app, err := cli.BuildApp(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("Failed to build application", log.FieldError, err)
		os.Exit(1)
	}

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Expenditure:        app.Expenditure,
		Recommender:        app.Recommendations,
		Receipts:           app.Receipts,
		Insights:           app.Insights,
		Ready:              app.Repository.Ping,
		Logger:             logger.WithComponent(log.ComponentHTTP),
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		if err := app.Close(); err != nil {
			logger.Error("Failed to release resources", log.FieldError, err)
		}
	})

	// The in-process scheduler lets a single binary keep the insight pass
	// fresh; deployments with cmd/insights-worker leave it disabled.
	if cfg.InsightsEnabled {
		sched := worker.NewScheduler("insights", cfg.InsightsInterval, func(ctx context.Context, _ time.Time) error {
			_, err := app.Insights.Generate(ctx)
			return err
		}, worker.WithLogger(logger.WithComponent(log.ComponentWorker)))
		go func() { _ = sched.Run(ctx) }()
	}

	logger.Info("Starting raseed server",
		"port", cfg.Port,
		"backend", cfg.PassBackend,
		"insights", cfg.InsightsEnabled)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		_ = app.Close()
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
