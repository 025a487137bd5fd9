package cli

import (
	"context"
	"errors"
	"fmt"

	"raseed/internal/amqp"
	"raseed/internal/backend"
	"raseed/internal/config"
	"raseed/internal/expenditure"
	"raseed/internal/llm"
	"raseed/internal/log"
	"raseed/internal/passes"
	"raseed/internal/services"
	"raseed/internal/storage"
)

// App holds the services built from configuration.
type App struct {
	Config          *config.Config
	Store           passes.Store
	Expenditure     *services.ExpenditureService
	Receipts        *services.ReceiptService
	Recommendations *services.RecommendationService
	Insights        *services.InsightService
	Repository      *storage.SQLiteRepository

	closers []func() error
	logger  *log.Logger
}

// BuildApp wires the pass store, engine and services. Gemini and AMQP are
// optional: without a key receipts cannot be analysed and insights use rule
// based text; without a URL insights are not published.
func BuildApp(ctx context.Context, cfg *config.Config, logger *log.Logger) (*App, error) {
	app := &App{Config: cfg, logger: logger}

	table, err := cfg.Categories()
	if err != nil {
		return nil, fmt.Errorf("category table: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("timezone: %w", err)
	}

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger.WithComponent(log.ComponentBackend).Logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("create pass backend: %w", err)
	}
	app.Store = res.Store
	if res.Cleanup != nil {
		app.closers = append(app.closers, res.Cleanup)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("open insight store: %w", err)
	}
	app.Repository = repo
	app.closers = append(app.closers, repo.Close)

	engine := expenditure.NewEngine(table, expenditure.WithLocation(loc))
	app.Expenditure = services.NewExpenditureService(
		res.Store,
		engine,
		cfg.PassClassIDs(table),
		services.FetchOptions{Timeout: cfg.PassFetchTimeout, Concurrency: cfg.PassFetchConcurrency},
		logger.WithComponent(log.ComponentExpenditure),
	)
	app.Recommendations = services.NewRecommendationService(app.Expenditure, services.DefaultCardCatalog())

	var (
		extractor services.ReceiptExtractor
		narrator  services.InsightNarrator
	)
	if cfg.GeminiAPIKey != "" {
		gen, err := llm.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			app.Close()
			return nil, err
		}
		client := llm.New(gen, logger.WithComponent(log.ComponentLLM))
		extractor, narrator = client, client
		logger.Info("Gemini enabled", "model", cfg.GeminiModel)
	} else {
		logger.Info("Gemini disabled - receipt analysis unavailable, insights use summary text")
	}
	app.Receipts = services.NewReceiptService(extractor, res.Store, table, cfg.WalletIssuerID,
		logger.WithComponent(log.ComponentReceipt))

	var publisher services.InsightPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, insights will not be published", log.FieldError, err)
		} else {
			publisher = client
			app.closers = append(app.closers, client.Close)
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	app.Insights = services.NewInsightService(services.InsightDeps{
		Expenditure: app.Expenditure,
		Narrator:    narrator,
		Writer:      res.Store,
		Repository:  repo,
		Publisher:   publisher,
		Logger:      logger.WithComponent(log.ComponentInsight),
	}, services.InsightConfig{
		IssuerID:     cfg.WalletIssuerID,
		ObjectSuffix: cfg.InsightObjectSuffix,
		ClassSuffix:  cfg.InsightClassSuffix,
	})

	return app, nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
