package expenditure

import (
	"time"

	"github.com/shopspring/decimal"

	"raseed/internal/core"
)

// PreviousMonth returns the calendar month before (year, month), rolling
// January back to December of the previous year.
func PreviousMonth(year int, month time.Month) (int, time.Month) {
	if month == time.January {
		return year - 1, time.December
	}
	return year, month - 1
}

// MonthTotal sums the receipts dated in the given calendar month.
func MonthTotal(receipts []core.Receipt, year int, month time.Month) core.MonthTotal {
	mt := core.MonthTotal{Year: year, Month: month, Total: decimal.Zero}
	total := decimal.Zero
	for _, r := range receipts {
		if !r.Valid() || r.Date.Year() != year || r.Date.Month() != month {
			continue
		}
		total = total.Add(r.Amount)
		mt.PassCount++
	}
	mt.Total = core.Round2(total)
	return mt
}

// CompareMonths compares the calendar month containing today with the one
// before it. PercentChange is positive when spending went down and nil when
// the previous month had no spend.
func CompareMonths(receipts []core.Receipt, today time.Time) core.MonthComparison {
	year, month := today.Year(), today.Month()
	prevYear, prevMonth := PreviousMonth(year, month)

	cmp := core.MonthComparison{
		Current:  MonthTotal(receipts, year, month),
		Previous: MonthTotal(receipts, prevYear, prevMonth),
	}
	if cmp.Previous.Total.IsZero() {
		return cmp
	}
	change := cmp.Previous.Total.Sub(cmp.Current.Total).
		Div(cmp.Previous.Total).
		Mul(decimal.NewFromInt(100)).
		Round(2)
	cmp.PercentChange = &change
	return cmp
}
