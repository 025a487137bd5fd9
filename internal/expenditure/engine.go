// Package expenditure aggregates receipt passes into period totals,
// per-category breakdowns and month-over-month comparisons.
//
// Everything here is a pure function of the pass list, the category table
// and the clock: nothing is fetched, cached or mutated.
package expenditure

import (
	"time"

	"raseed/internal/core"
)

// Clock returns the current instant.
type Clock func() time.Time

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock used to anchor periods.
func WithClock(c Clock) Option {
	return func(e *Engine) {
		if c != nil {
			e.now = c
		}
	}
}

// WithLocation sets the location in which "today" is evaluated.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// Engine runs the period filter, category aggregator and month comparison
// over a pass list.
type Engine struct {
	agg Aggregator
	now Clock
	loc *time.Location
}

// NewEngine returns an engine for the given category table.
func NewEngine(table core.CategoryTable, opts ...Option) *Engine {
	e := &Engine{
		agg: NewAggregator(table),
		now: time.Now,
		loc: time.Local,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Table returns the category table.
func (e *Engine) Table() core.CategoryTable {
	return e.agg.Table()
}

// Today returns the current calendar date.
func (e *Engine) Today() time.Time {
	return CalendarDate(e.now(), e.loc)
}

// Summary filters passes to the selected period and breaks the result down
// by category. An empty pass list yields a zero summary.
func (e *Engine) Summary(passes []core.Pass, selector string) (core.Summary, error) {
	p, err := ParsePeriod(selector)
	if err != nil {
		return core.Summary{}, err
	}
	ledger := Parse(passes)
	filtered, err := FilterPeriod(ledger.Receipts, p, e.Today())
	if err != nil {
		return core.Summary{}, err
	}
	breakdown := e.agg.Aggregate(filtered.Receipts)
	return core.Summary{
		Period:              p,
		TotalSpent:          filtered.Total,
		TotalPasses:         len(filtered.Receipts),
		AveragePassesPerDay: breakdown.AveragePassesPerDay,
		Categories:          breakdown.Categories,
		SkippedPasses:       ledger.Skipped,
	}, nil
}

// Period returns the receipts inside the selected period and their total.
func (e *Engine) Period(passes []core.Pass, selector string) (core.PeriodTotal, error) {
	p, err := ParsePeriod(selector)
	if err != nil {
		return core.PeriodTotal{}, err
	}
	return FilterPeriod(Parse(passes).Receipts, p, e.Today())
}

// Categories returns the category breakdown for the selected period.
func (e *Engine) Categories(passes []core.Pass, selector string) (core.CategoryBreakdown, error) {
	filtered, err := e.Period(passes, selector)
	if err != nil {
		return core.CategoryBreakdown{}, err
	}
	return e.agg.Aggregate(filtered.Receipts), nil
}

// Total sums every valid pass regardless of date. The second result is the
// number of skipped passes.
func (e *Engine) Total(passes []core.Pass) (core.PeriodTotal, int) {
	ledger := Parse(passes)
	return core.PeriodTotal{
		Receipts: ledger.Receipts,
		Total:    core.Round2(Sum(ledger.Receipts)),
	}, ledger.Skipped
}

// MonthlyComparison compares this calendar month with the previous one.
// It returns ErrEmptyPassStore when passes is empty.
func (e *Engine) MonthlyComparison(passes []core.Pass) (core.MonthComparison, error) {
	if len(passes) == 0 {
		return core.MonthComparison{}, ErrEmptyPassStore
	}
	return CompareMonths(Parse(passes).Receipts, e.Today()), nil
}
