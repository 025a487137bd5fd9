// Package services provides business logic and orchestration services.
package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"raseed/internal/core"
	"raseed/internal/expenditure"
	"raseed/internal/log"
	"raseed/internal/passes"
)

const (
	defaultFetchTimeout     = 10 * time.Second
	defaultFetchConcurrency = 4
)

// FetchOptions bounds the per-class pass fetches.
type FetchOptions struct {
	Timeout     time.Duration
	Concurrency int
}

// ExpenditureService fetches the pass list for every configured class and
// runs the expenditure engine over it. Every call fetches fresh data.
type ExpenditureService struct {
	fetcher  passes.Fetcher
	engine   *expenditure.Engine
	classIDs []string
	opts     FetchOptions
	logger   *log.Logger
}

func NewExpenditureService(fetcher passes.Fetcher, engine *expenditure.Engine, classIDs []string, opts FetchOptions, logger *log.Logger) *ExpenditureService {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultFetchTimeout
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultFetchConcurrency
	}
	if logger == nil {
		logger = log.Wrap(nil, log.ComponentExpenditure)
	}
	return &ExpenditureService{
		fetcher:  fetcher,
		engine:   engine,
		classIDs: append([]string(nil), classIDs...),
		opts:     opts,
		logger:   logger,
	}
}

// Engine returns the engine used for aggregation.
func (s *ExpenditureService) Engine() *expenditure.Engine {
	return s.engine
}

// ClassIDs returns the pass classes the service aggregates over.
func (s *ExpenditureService) ClassIDs() []string {
	return append([]string(nil), s.classIDs...)
}

// FetchAll fetches every class concurrently and concatenates the results in
// class order. A class whose fetch fails or times out contributes no passes.
// The only error returned is the cancellation of ctx itself.
func (s *ExpenditureService) FetchAll(ctx context.Context) ([]core.Pass, error) {
	results := make([][]core.Pass, len(s.classIDs))

	var g errgroup.Group
	g.SetLimit(s.opts.Concurrency)
	for i, classID := range s.classIDs {
		g.Go(func() error {
			fetchCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
			defer cancel()

			start := time.Now()
			got, err := s.fetcher.FetchPasses(fetchCtx, classID)
			if err != nil {
				s.logger.WarnContext(ctx, "Pass fetch failed, treating class as empty",
					log.FieldClassID, classID,
					log.FieldOperation, log.OpFetch,
					log.FieldDuration, time.Since(start).Milliseconds(),
					log.FieldError, err)
				return nil
			}
			results[i] = got
			s.logger.DebugContext(ctx, "Fetched class",
				log.FieldClassID, classID,
				log.FieldPassCount, len(got),
				log.FieldDuration, time.Since(start).Milliseconds())
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("fetch passes: %w", err)
	}

	var all []core.Pass
	for _, r := range results {
		all = append(all, r...)
	}
	return all, nil
}

// Summary returns the dashboard summary for a period selector.
func (s *ExpenditureService) Summary(ctx context.Context, selector string) (core.Summary, error) {
	if _, err := expenditure.ParsePeriod(selector); err != nil {
		return core.Summary{}, err
	}
	all, err := s.FetchAll(ctx)
	if err != nil {
		return core.Summary{}, err
	}
	summary, err := s.engine.Summary(all, selector)
	if err != nil {
		return core.Summary{}, err
	}
	s.logger.InfoContext(ctx, "Summary computed",
		log.FieldOperation, log.OpSummarize,
		log.FieldPeriod, string(summary.Period),
		log.FieldPassCount, summary.TotalPasses,
		log.FieldSkippedPasses, summary.SkippedPasses,
		log.FieldTotal, summary.TotalSpent.StringFixed(2))
	return summary, nil
}

// MonthlyComparison compares the current calendar month with the previous one.
func (s *ExpenditureService) MonthlyComparison(ctx context.Context) (core.MonthComparison, error) {
	all, err := s.FetchAll(ctx)
	if err != nil {
		return core.MonthComparison{}, err
	}
	cmp, err := s.engine.MonthlyComparison(all)
	if err != nil {
		return core.MonthComparison{}, err
	}
	s.logger.InfoContext(ctx, "Monthly comparison computed",
		log.FieldOperation, log.OpCompare,
		"current_total", cmp.Current.Total.StringFixed(2),
		"previous_total", cmp.Previous.Total.StringFixed(2))
	return cmp, nil
}

// Total sums every valid pass. The second result is the number of skipped passes.
func (s *ExpenditureService) Total(ctx context.Context) (core.PeriodTotal, int, error) {
	all, err := s.FetchAll(ctx)
	if err != nil {
		return core.PeriodTotal{}, 0, err
	}
	total, skipped := s.engine.Total(all)
	return total, skipped, nil
}

// Period returns the passes inside a period and their total.
func (s *ExpenditureService) Period(ctx context.Context, selector string) (core.PeriodTotal, error) {
	if _, err := expenditure.ParsePeriod(selector); err != nil {
		return core.PeriodTotal{}, err
	}
	all, err := s.FetchAll(ctx)
	if err != nil {
		return core.PeriodTotal{}, err
	}
	return s.engine.Period(all, selector)
}

// Categories returns the per-category breakdown of a period.
func (s *ExpenditureService) Categories(ctx context.Context, selector string) (core.CategoryBreakdown, error) {
	if _, err := expenditure.ParsePeriod(selector); err != nil {
		return core.CategoryBreakdown{}, err
	}
	all, err := s.FetchAll(ctx)
	if err != nil {
		return core.CategoryBreakdown{}, err
	}
	return s.engine.Categories(all, selector)
}

// Inventory lists the grocery items bought across all receipts.
func (s *ExpenditureService) Inventory(ctx context.Context) ([]core.InventoryItem, error) {
	all, err := s.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	items := s.engine.Inventory(all)
	s.logger.DebugContext(ctx, "Inventory listed",
		log.FieldPassCount, len(all),
		"item_count", len(items))
	return items, nil
}
