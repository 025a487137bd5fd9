package http

import (
	"time"

	"raseed/internal/core"
)

// Response bodies. Amounts are rendered as numbers rounded to two decimals.
type (
	categoryView struct {
		Name   string  `json:"name"`
		Amount float64 `json:"amount"`
	}

	summaryView struct {
		TotalSpent          float64        `json:"totalSpent"`
		TotalPasses         int            `json:"totalPasses"`
		AveragePassesPerDay float64        `json:"averagePassesPerDay"`
		TotalCategories     int            `json:"totalCategories"`
		CategoryData        []categoryView `json:"categoryData"`
		SkippedPasses       int            `json:"skippedPasses"`
	}

	monthView struct {
		Year      int     `json:"year"`
		Month     int     `json:"month"`
		Total     float64 `json:"total"`
		PassCount int     `json:"passCount"`
	}

	comparisonView struct {
		CurrentMonth  monthView `json:"currentMonth"`
		PreviousMonth monthView `json:"previousMonth"`
		PercentChange *float64  `json:"percentChange"`
	}

	totalView struct {
		Total         float64 `json:"total"`
		PassCount     int     `json:"passCount"`
		SkippedPasses int     `json:"skippedPasses"`
	}

	periodView struct {
		Period    string   `json:"period"`
		Total     float64  `json:"total"`
		PassCount int      `json:"passCount"`
		Passes    []string `json:"passes"`
	}

	classWiseView struct {
		Filter  string         `json:"filter"`
		Classes []categoryView `json:"classes"`
	}

	recommendationView struct {
		Category         string      `json:"category"`
		Amount           float64     `json:"amount"`
		RecommendedCards []string    `json:"recommended_cards"`
		Offers           []offerView `json:"offers"`
	}

	inventoryItemView struct {
		Item         string `json:"item"`
		PurchaseDate string `json:"purchase_date"`
	}

	inventoryView struct {
		Items []inventoryItemView `json:"items"`
	}

	offerView struct {
		Vendor     string `json:"vendor"`
		CreditCard string `json:"credit_card"`
		Offer      string `json:"offer"`
	}

	createdReceiptView struct {
		PassID  string `json:"passId"`
		ClassID string `json:"classId"`
	}

	insightView struct {
		ID            string         `json:"id"`
		GeneratedAt   time.Time      `json:"generatedAt"`
		Headline      string         `json:"headline"`
		Narrative     string         `json:"narrative"`
		PassID        string         `json:"passId"`
		CurrentMonth  monthView      `json:"currentMonth"`
		PreviousMonth monthView      `json:"previousMonth"`
		PercentChange *float64       `json:"percentChange"`
		Categories    []categoryView `json:"categories"`
	}

	insightListView struct {
		Insights []insightView `json:"insights"`
	}
)

func categoryViews(cats []core.CategoryAmount) []categoryView {
	out := make([]categoryView, len(cats))
	for i, c := range cats {
		out[i] = categoryView{Name: c.Name, Amount: core.Float(c.Amount)}
	}
	return out
}

func newSummaryView(s core.Summary) summaryView {
	return summaryView{
		TotalSpent:          core.Float(s.TotalSpent),
		TotalPasses:         s.TotalPasses,
		AveragePassesPerDay: core.Float(s.AveragePassesPerDay),
		TotalCategories:     s.TotalCategories(),
		CategoryData:        categoryViews(s.Categories),
		SkippedPasses:       s.SkippedPasses,
	}
}

func newMonthView(m core.MonthTotal) monthView {
	return monthView{Year: m.Year, Month: int(m.Month), Total: core.Float(m.Total), PassCount: m.PassCount}
}

func newComparisonView(c core.MonthComparison) comparisonView {
	v := comparisonView{
		CurrentMonth:  newMonthView(c.Current),
		PreviousMonth: newMonthView(c.Previous),
	}
	if c.PercentChange != nil {
		pct := core.Float(*c.PercentChange)
		v.PercentChange = &pct
	}
	return v
}

func newPeriodView(t core.PeriodTotal) periodView {
	ids := make([]string, len(t.Receipts))
	for i, r := range t.Receipts {
		ids[i] = r.PassID
	}
	return periodView{
		Period:    string(t.Period),
		Total:     core.Float(t.Total),
		PassCount: len(t.Receipts),
		Passes:    ids,
	}
}

func newInsightView(in core.Insight) insightView {
	cmp := newComparisonView(in.Comparison)
	return insightView{
		ID:            in.ID,
		GeneratedAt:   in.GeneratedAt,
		Headline:      in.Headline,
		Narrative:     in.Narrative,
		PassID:        in.PassID,
		CurrentMonth:  cmp.CurrentMonth,
		PreviousMonth: cmp.PreviousMonth,
		PercentChange: cmp.PercentChange,
		Categories:    categoryViews(in.Categories),
	}
}
