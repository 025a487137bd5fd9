package expenditure

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"raseed/internal/core"
)

// Matcher decides whether a receipt date falls inside a period anchored at
// today. Both dates are calendar dates at midnight UTC.
type Matcher interface {
	Match(date, today time.Time) bool
}

// DayMatcher matches receipts dated today.
type DayMatcher struct{}

// Match returns true if date is today.
func (DayMatcher) Match(date, today time.Time) bool {
	return date.Equal(today)
}

// WeekMatcher matches receipts from the last seven days that share today's ISO week.
type WeekMatcher struct{}

// Match returns true if date is between 0 and 6 days before today and in
// the same ISO year and week.
func (WeekMatcher) Match(date, today time.Time) bool {
	days := int(today.Sub(date).Hours() / 24)
	if days < 0 || days > 6 {
		return false
	}
	dy, dw := date.ISOWeek()
	ty, tw := today.ISOWeek()
	return dy == ty && dw == tw
}

// MonthMatcher matches receipts in today's calendar month.
type MonthMatcher struct{}

// Match returns true if date has the same year and month as today.
func (MonthMatcher) Match(date, today time.Time) bool {
	return date.Year() == today.Year() && date.Month() == today.Month()
}

// YearMatcher matches receipts in today's calendar year.
type YearMatcher struct{}

// Match returns true if date has the same year as today.
func (YearMatcher) Match(date, today time.Time) bool {
	return date.Year() == today.Year()
}

var periodMatchers = map[core.Period]Matcher{
	core.Daily:   DayMatcher{},
	core.Weekly:  WeekMatcher{},
	core.Monthly: MonthMatcher{},
	core.Yearly:  YearMatcher{},
}

// ParsePeriod normalizes a period selector. Matching is case-insensitive and
// ignores surrounding whitespace.
func ParsePeriod(s string) (core.Period, error) {
	p := core.Period(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := periodMatchers[p]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
	return p, nil
}

// MatcherFor returns the matcher for a period.
func MatcherFor(p core.Period) (Matcher, error) {
	m, ok := periodMatchers[p]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPeriod, string(p))
	}
	return m, nil
}

// ValidPeriods returns the accepted selectors as strings, for error responses.
func ValidPeriods() []string {
	out := make([]string, len(core.Periods))
	for i, p := range core.Periods {
		out[i] = string(p)
	}
	return out
}

// CalendarDate truncates t to its calendar date in loc, returned at midnight UTC
// so it compares directly with parsed receipt dates.
func CalendarDate(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FilterPeriod returns the receipts inside the period anchored at today, in
// input order, together with their total rounded to two decimals.
func FilterPeriod(receipts []core.Receipt, p core.Period, today time.Time) (core.PeriodTotal, error) {
	m, err := MatcherFor(p)
	if err != nil {
		return core.PeriodTotal{}, err
	}
	out := core.PeriodTotal{Period: p, Receipts: []core.Receipt{}}
	total := decimal.Zero
	for _, r := range receipts {
		if !r.Valid() || !m.Match(r.Date, today) {
			continue
		}
		out.Receipts = append(out.Receipts, r)
		total = total.Add(r.Amount)
	}
	out.Total = core.Round2(total)
	return out, nil
}

// Sum adds up the amounts of valid receipts without rounding.
func Sum(receipts []core.Receipt) decimal.Decimal {
	total := decimal.Zero
	for _, r := range receipts {
		if r.Valid() {
			total = total.Add(r.Amount)
		}
	}
	return total
}
