package passes

import (
	"context"
	"fmt"

	"raseed/internal/core"
)

// Seed ensures every class referenced by ps exists and upserts the passes in
// order. It stops at the first failure and returns how many passes were
// written.
func Seed(ctx context.Context, store Store, ps []core.Pass) (int, error) {
	classes := make(map[string]struct{})
	for _, p := range ps {
		if _, ok := classes[p.ClassID]; ok {
			continue
		}
		if err := store.EnsureClass(ctx, p.ClassID); err != nil {
			return 0, fmt.Errorf("ensure class %s: %w", p.ClassID, err)
		}
		classes[p.ClassID] = struct{}{}
	}

	for i, p := range ps {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if _, err := store.UpsertPass(ctx, p); err != nil {
			return i, fmt.Errorf("upsert pass %s: %w", p.ID, err)
		}
	}
	return len(ps), nil
}
