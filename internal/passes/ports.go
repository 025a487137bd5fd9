package passes

import (
	"context"

	"raseed/internal/core"
)

// Ports for outbound pass store adapters.
type (
	// Fetcher lists every pass of one class. Pagination is handled by the
	// adapter; callers receive the full, ordered list.
	Fetcher interface {
		FetchPasses(ctx context.Context, classID string) ([]core.Pass, error)
	}

	// Writer creates a pass or replaces the existing pass with the same id.
	Writer interface {
		UpsertPass(ctx context.Context, p core.Pass) (id string, err error)
	}

	// ClassWriter makes sure a pass class exists before objects are written to it.
	ClassWriter interface {
		EnsureClass(ctx context.Context, classID string) error
	}

	// Store is the full pass store used by the service layer.
	Store interface {
		Fetcher
		Writer
		ClassWriter
	}
)
