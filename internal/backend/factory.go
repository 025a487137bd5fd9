package backend

import (
	"context"
	"fmt"
	"log/slog"

	"raseed/internal/passes/memory"
	"raseed/internal/passes/wallet"
)

// DefaultFactory implements the Factory interface.
type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateBackend implements Factory.CreateBackend.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case WalletBackend:
		return f.createWalletBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createWalletBackend(ctx context.Context, config Config) (*BackendResult, error) {
	cli, err := wallet.New(ctx, config.Credentials, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Wallet client: %w", err)
	}

	f.logger.Info("Initialized Google Wallet backend", "issuer_id", config.IssuerID)
	return &BackendResult{Store: cli}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	if config.SeedFile == "" {
		f.logger.Info("Initialized memory backend without seed file")
		return &BackendResult{Store: memory.New()}, nil
	}

	store, err := memory.NewFromFile(config.SeedFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load pass seed file: %w", err)
	}

	f.logger.Info("Initialized memory backend", "seed_file", config.SeedFile, "passes", store.Len())
	return &BackendResult{Store: store}, nil
}
