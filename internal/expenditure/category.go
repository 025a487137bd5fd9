package expenditure

import (
	"github.com/shopspring/decimal"

	"raseed/internal/core"
)

// Aggregator groups receipts by category using a fixed category table.
type Aggregator struct {
	table core.CategoryTable
}

// NewAggregator returns an aggregator bound to table.
func NewAggregator(table core.CategoryTable) Aggregator {
	return Aggregator{table: table}
}

// Table returns the category table the aggregator was built with.
func (a Aggregator) Table() core.CategoryTable {
	return a.table
}

// Aggregate sums receipts per category. Every table category is reported in
// declared order, with zero when there is no spend; suffixes missing from the
// table follow under their own name in first-seen order.
func (a Aggregator) Aggregate(receipts []core.Receipt) core.CategoryBreakdown {
	entries := a.table.Entries()
	amounts := make(map[string]decimal.Decimal, len(entries))
	for _, e := range entries {
		amounts[e.Name] = decimal.Zero
	}
	var extra []string
	days := make(map[string]struct{})
	total := decimal.Zero
	count := 0

	for _, r := range receipts {
		if !r.Valid() {
			continue
		}
		name := a.table.CategoryFor(r.ClassSuffix)
		if _, seen := amounts[name]; !seen {
			extra = append(extra, name)
		}
		amounts[name] = amounts[name].Add(r.Amount)
		total = total.Add(r.Amount)
		days[r.DateKey] = struct{}{}
		count++
	}

	categories := make([]core.CategoryAmount, 0, len(entries)+len(extra))
	for _, e := range entries {
		categories = append(categories, core.CategoryAmount{Name: e.Name, Amount: core.Round2(amounts[e.Name])})
	}
	for _, name := range extra {
		categories = append(categories, core.CategoryAmount{Name: name, Amount: core.Round2(amounts[name])})
	}

	return core.CategoryBreakdown{
		Categories:          categories,
		Total:               core.Round2(total),
		PassCount:           count,
		AveragePassesPerDay: averagePerDay(count, len(days)),
	}
}

func averagePerDay(count, days int) decimal.Decimal {
	if days < 1 {
		days = 1
	}
	return decimal.NewFromInt(int64(count)).Div(decimal.NewFromInt(int64(days))).Round(2)
}
