package http

import (
	"net/http"

	"raseed/internal/core"
	"raseed/internal/expenditure"
	"raseed/internal/log"
)

// defaultFilter is used when a request names no period.
const defaultFilter = string(core.Yearly)

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	filter := QueryParam(r.URL.Query(), "filter", defaultFilter)
	sum, err := s.deps.Expenditure.Summary(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, log.OpSummarize, err)
		return
	}
	log.FromContext(r.Context()).DebugContext(r.Context(), "Summary computed",
		log.FieldPeriod, string(sum.Period),
		log.FieldPassCount, sum.TotalPasses,
		log.FieldSkippedPasses, sum.SkippedPasses)
	OK(w, newSummaryView(sum))
}

func (s *Server) handleMonthlyComparison(w http.ResponseWriter, r *http.Request) {
	cmp, err := s.deps.Expenditure.MonthlyComparison(r.Context())
	if err != nil {
		s.writeError(w, r, log.OpCompare, err)
		return
	}
	OK(w, newComparisonView(cmp))
}

func (s *Server) handleTotal(w http.ResponseWriter, r *http.Request) {
	total, skipped, err := s.deps.Expenditure.Total(r.Context())
	if err != nil {
		s.writeError(w, r, log.OpSummarize, err)
		return
	}
	OK(w, totalView{
		Total:         core.Float(total.Total),
		PassCount:     len(total.Receipts),
		SkippedPasses: skipped,
	})
}

func (s *Server) handlePeriod(w http.ResponseWriter, r *http.Request) {
	p := QueryParam(r.URL.Query(), "p", defaultFilter)
	total, err := s.deps.Expenditure.Period(r.Context(), p)
	if err != nil {
		s.writeError(w, r, log.OpSummarize, err)
		return
	}
	OK(w, newPeriodView(total))
}

func (s *Server) handleClassWise(w http.ResponseWriter, r *http.Request) {
	period, err := expenditure.ParsePeriod(QueryParam(r.URL.Query(), "filter", defaultFilter))
	if err != nil {
		s.writeError(w, r, log.OpSummarize, err)
		return
	}
	breakdown, err := s.deps.Expenditure.Categories(r.Context(), string(period))
	if err != nil {
		s.writeError(w, r, log.OpSummarize, err)
		return
	}
	OK(w, classWiseView{Filter: string(period), Classes: categoryViews(breakdown.Categories)})
}

func (s *Server) handleRecommendCard(w http.ResponseWriter, r *http.Request) {
	rec, err := s.deps.Recommender.Recommend(r.Context())
	if err != nil {
		s.writeError(w, r, log.OpSummarize, err)
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Card recommended",
		log.FieldCategory, rec.Category.Name,
		log.FieldTotal, rec.Category.Amount.StringFixed(2))
	offers := make([]offerView, 0, len(rec.Offers))
	for _, o := range rec.Offers {
		offers = append(offers, offerView{Vendor: o.Vendor, CreditCard: o.Card, Offer: o.Text})
	}
	OK(w, recommendationView{
		Category:         rec.Category.Name,
		Amount:           core.Float(rec.Category.Amount),
		RecommendedCards: rec.Cards,
		Offers:           offers,
	})
}

func (s *Server) handleInventory(w http.ResponseWriter, r *http.Request) {
	items, err := s.deps.Expenditure.Inventory(r.Context())
	if err != nil {
		s.writeError(w, r, log.OpFetch, err)
		return
	}
	view := inventoryView{Items: make([]inventoryItemView, 0, len(items))}
	for _, it := range items {
		view.Items = append(view.Items, inventoryItemView{Item: it.Item, PurchaseDate: it.PurchaseDate})
	}
	OK(w, view)
}
