// Package memory provides an in-process pass store seeded from a JSON file of
// wallet objects. It backs local development and tests.
package memory

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"raseed/internal/core"
	ports "raseed/internal/passes"
	"raseed/internal/passes/wallet"
)

var _ ports.Store = (*Store)(nil)

type Store struct {
	mu      sync.RWMutex
	passes  []core.Pass
	classes map[string]struct{}
}

func New(passes ...core.Pass) *Store {
	s := &Store{classes: map[string]struct{}{}}
	for _, p := range passes {
		s.put(p)
	}
	return s
}

// NewFromFile seeds a store from a JSON array of wallet objects. A missing
// file yields an empty store.
func NewFromFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()
	passes, err := wallet.ReadObjects(f)
	if err != nil {
		return nil, fmt.Errorf("seed file %s: %w", path, err)
	}
	return New(passes...), nil
}

// FetchPasses returns copies of the passes in classID, in insertion order.
func (s *Store) FetchPasses(ctx context.Context, classID string) ([]core.Pass, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Pass
	for _, p := range s.passes {
		if p.ClassID == classID {
			out = append(out, clone(p))
		}
	}
	return out, nil
}

// UpsertPass stores the pass, replacing any pass with the same id in place.
func (s *Store) UpsertPass(_ context.Context, p core.Pass) (string, error) {
	if p.ID == "" || p.ClassID == "" {
		return "", errors.New("pass id and class id are required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(p)
	return p.ID, nil
}

// EnsureClass records the class id.
func (s *Store) EnsureClass(_ context.Context, classID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.classes[classID] = struct{}{}
	return nil
}

// HasClass reports whether EnsureClass or a stored pass introduced classID.
func (s *Store) HasClass(classID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.classes[classID]
	return ok
}

// Len returns the number of stored passes.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.passes)
}

func (s *Store) put(p core.Pass) {
	p = clone(p)
	s.classes[p.ClassID] = struct{}{}
	for i := range s.passes {
		if s.passes[i].ID == p.ID {
			s.passes[i] = p
			return
		}
	}
	s.passes = append(s.passes, p)
}

func clone(p core.Pass) core.Pass {
	p.TextModules = append([]core.TextModule(nil), p.TextModules...)
	return p
}
