// Package backend builds the pass store selected by configuration.
package backend

import (
	"context"

	"raseed/internal/passes"
	"raseed/internal/passes/wallet"
)

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// BackendResult contains the pass store and an optional cleanup function.
type BackendResult struct {
	Store   passes.Store
	Cleanup CleanupFunc
}

// Factory creates pass stores based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation.
type Config struct {
	Type BackendType

	// Memory specific
	SeedFile string

	// Wallet specific
	IssuerID    string
	Credentials wallet.Credentials
}

// BackendType names a pass store implementation.
type BackendType string

const (
	MemoryBackend BackendType = "memory"
	WalletBackend BackendType = "wallet"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, WalletBackend:
		return true
	default:
		return false
	}
}
