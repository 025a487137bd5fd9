package core

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	Daily   Period = "daily"
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
	Yearly  Period = "yearly"
)

// Periods lists the accepted period selectors in display order.
var Periods = []Period{Daily, Weekly, Monthly, Yearly}

type (
	// Period selects a relative date window anchored at today.
	Period string

	// CategoryAmount represents an amount aggregated by category name.
	CategoryAmount struct {
		Name   string
		Amount decimal.Decimal
	}

	// PeriodTotal is the result of filtering receipts to a period.
	PeriodTotal struct {
		Period   Period
		Receipts []Receipt
		Total    decimal.Decimal
	}

	// CategoryBreakdown is the per-category view of a receipt set.
	CategoryBreakdown struct {
		Categories          []CategoryAmount
		Total               decimal.Decimal
		PassCount           int
		AveragePassesPerDay decimal.Decimal
	}

	// Summary is the dashboard view for one period.
	Summary struct {
		Period              Period
		TotalSpent          decimal.Decimal
		TotalPasses         int
		AveragePassesPerDay decimal.Decimal
		Categories          []CategoryAmount
		SkippedPasses       int
	}

	// MonthTotal is the spend inside one calendar month.
	MonthTotal struct {
		Year      int
		Month     time.Month
		Total     decimal.Decimal
		PassCount int
	}

	// MonthComparison compares the current calendar month with the previous one.
	// PercentChange is nil when the previous month had no spend; positive
	// values mean less was spent this month.
	MonthComparison struct {
		Current       MonthTotal
		Previous      MonthTotal
		PercentChange *decimal.Decimal
	}

	// Insight is a generated spending insight snapshot.
	Insight struct {
		ID          string
		GeneratedAt time.Time
		Comparison  MonthComparison
		Categories  []CategoryAmount
		Headline    string
		Narrative   string
		PassID      string
	}
)

// TotalCategories returns the number of categories in the summary.
func (s Summary) TotalCategories() int {
	return len(s.Categories)
}

// Top returns the category with the highest amount. Ties keep the earlier
// entry. ok is false when no category has spend.
func (b CategoryBreakdown) Top() (CategoryAmount, bool) {
	var best CategoryAmount
	found := false
	for _, c := range b.Categories {
		if !c.Amount.IsPositive() {
			continue
		}
		if !found || c.Amount.GreaterThan(best.Amount) {
			best = c
			found = true
		}
	}
	return best, found
}
