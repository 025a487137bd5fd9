package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raseed/internal/core"
	"raseed/internal/expenditure"
	"raseed/internal/passes/memory"
	"raseed/internal/services"
)

const issuer = "3388000000022979223"

func receiptPass(id, suffix, date, total string) core.Pass {
	return core.Pass{
		ID:      core.QualifiedID(issuer, id),
		ClassID: core.QualifiedID(issuer, suffix),
		TextModules: []core.TextModule{
			{ID: core.ModuleDate, Body: date},
			{ID: core.ModuleTotal, Body: total},
		},
	}
}

func seedPasses() []core.Pass {
	return []core.Pass{
		receiptPass("g1", "GroceryClass", "2025-07-26", "USD 85.75"),
		receiptPass("t1", "TravelClass", "2025-07-20", "USD 100.00"),
		receiptPass("g2", "GroceryClass", "2025-06-15", "USD 40"),
		receiptPass("bad", "GroceryClass", "2025-07-01", "₹ 1,200.00"),
	}
}

type fakeExtractor struct {
	out core.ScannedReceipt
	err error
}

func (f fakeExtractor) ExtractReceipt(context.Context, string, []byte) (core.ScannedReceipt, error) {
	return f.out, f.err
}

type fakeInsights struct {
	items     []core.Insight
	lastLimit int
}

func (f *fakeInsights) List(_ context.Context, limit int) ([]core.Insight, error) {
	f.lastLimit = limit
	return f.items, nil
}

type testEnv struct {
	store    *memory.Store
	insights *fakeInsights
	server   *Server
}

func newTestEnv(t *testing.T, passes []core.Pass, opts ...func(*Deps)) *testEnv {
	t.Helper()
	table := core.DefaultCategoryTable()
	store := memory.New(passes...)
	engine := expenditure.NewEngine(table,
		expenditure.WithClock(func() time.Time { return time.Date(2025, 7, 26, 12, 0, 0, 0, time.UTC) }),
		expenditure.WithLocation(time.UTC))

	var classIDs []string
	for _, s := range table.Suffixes() {
		classIDs = append(classIDs, core.QualifiedID(issuer, s))
	}
	exp := services.NewExpenditureService(store, engine, classIDs, services.FetchOptions{}, nil)
	name := "Fresh Mart"
	insights := &fakeInsights{}

	deps := Deps{
		Expenditure:        exp,
		Recommender:        services.NewRecommendationService(exp, nil),
		Receipts:           services.NewReceiptService(fakeExtractor{out: core.ScannedReceipt{Merchant: &name}}, store, table, issuer, nil),
		Insights:           insights,
		RateLimitPerMinute: 1000,
	}
	for _, o := range opts {
		o(&deps)
	}

	srv := NewServer(":0", deps)
	t.Cleanup(func() { srv.rateLimiter.Stop() })
	return &testEnv{store: store, insights: insights, server: srv}
}

func (e *testEnv) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	e.server.Handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) get(t *testing.T, target string) *httptest.ResponseRecorder {
	return e.do(t, httptest.NewRequest(http.MethodGet, target, nil))
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestSummary(t *testing.T) {
	env := newTestEnv(t, seedPasses())

	rec := env.get(t, "/expenditure/summary?filter=monthly")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	got := decode[summaryView](t, rec)
	assert.Equal(t, 185.75, got.TotalSpent)
	assert.Equal(t, 2, got.TotalPasses)
	assert.Equal(t, 1.0, got.AveragePassesPerDay)
	assert.Equal(t, 5, got.TotalCategories)
	assert.Equal(t, 1, got.SkippedPasses)
	assert.Equal(t, []categoryView{
		{Name: "groceries", Amount: 85.75},
		{Name: "travel", Amount: 100},
		{Name: "health", Amount: 0},
		{Name: "entertainment", Amount: 0},
		{Name: "education", Amount: 0},
	}, got.CategoryData)
}

func TestSummaryDefaultsToYearly(t *testing.T) {
	env := newTestEnv(t, seedPasses())

	got := decode[summaryView](t, env.get(t, "/expenditure/summary"))
	assert.Equal(t, 225.75, got.TotalSpent)
	assert.Equal(t, 3, got.TotalPasses)
}

func TestSummaryFilterIsCaseInsensitive(t *testing.T) {
	env := newTestEnv(t, seedPasses())

	rec := env.get(t, "/expenditure/summary?filter=%20WEEKLY%20")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 85.75, decode[summaryView](t, rec).TotalSpent)
}

func TestSummaryInvalidFilter(t *testing.T) {
	env := newTestEnv(t, seedPasses())

	rec := env.get(t, "/expenditure/summary?filter=fortnightly")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decode[ErrorBody](t, rec)
	assert.Contains(t, body.Error, "fortnightly")
	assert.Equal(t, []string{"daily", "weekly", "monthly", "yearly"}, body.ValidOptions)
}

func TestSummaryEmptyStoreIsZero(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.get(t, "/expenditure/summary?filter=monthly")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[summaryView](t, rec)
	assert.Zero(t, got.TotalSpent)
	assert.Zero(t, got.TotalPasses)
}

func TestMonthlyComparison(t *testing.T) {
	env := newTestEnv(t, seedPasses())

	rec := env.get(t, "/expenditure/monthly-comparison")
	require.Equal(t, http.StatusOK, rec.Code)

	got := decode[comparisonView](t, rec)
	assert.Equal(t, monthView{Year: 2025, Month: 7, Total: 185.75, PassCount: 2}, got.CurrentMonth)
	assert.Equal(t, monthView{Year: 2025, Month: 6, Total: 40, PassCount: 1}, got.PreviousMonth)
	require.NotNil(t, got.PercentChange)
	assert.Equal(t, -364.38, *got.PercentChange)
}

func TestMonthlyComparisonNullPercent(t *testing.T) {
	env := newTestEnv(t, []core.Pass{receiptPass("g1", "GroceryClass", "2025-07-26", "USD 85.75")})

	rec := env.get(t, "/expenditure/monthly-comparison")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"percentChange":null`)
}

func TestMonthlyComparisonEmptyStore(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.get(t, "/expenditure/monthly-comparison")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "could not fetch passes", decode[ErrorBody](t, rec).Error)
}

func TestTotalAndPeriod(t *testing.T) {
	env := newTestEnv(t, seedPasses())

	total := decode[totalView](t, env.get(t, "/expenditure/total"))
	assert.Equal(t, totalView{Total: 225.75, PassCount: 3, SkippedPasses: 1}, total)

	period := decode[periodView](t, env.get(t, "/expenditure/period?p=daily"))
	assert.Equal(t, "daily", period.Period)
	assert.Equal(t, 85.75, period.Total)
	assert.Equal(t, []string{issuer + ".g1"}, period.Passes)

	assert.Equal(t, http.StatusBadRequest, env.get(t, "/expenditure/period?p=hourly").Code)
}

func TestClassWise(t *testing.T) {
	env := newTestEnv(t, seedPasses())

	got := decode[classWiseView](t, env.get(t, "/expenditure/class-wise?filter=Monthly"))
	assert.Equal(t, "monthly", got.Filter)
	require.Len(t, got.Classes, 5)
	assert.Equal(t, categoryView{Name: "travel", Amount: 100}, got.Classes[1])
}

func TestRecommendCard(t *testing.T) {
	env := newTestEnv(t, seedPasses())

	rec := env.do(t, httptest.NewRequest(http.MethodPost, "/recommend_card", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[recommendationView](t, rec)
	assert.Equal(t, "groceries", got.Category)
	assert.Equal(t, 125.75, got.Amount)
	assert.Equal(t, []string{"HDFC MoneyBack", "ICICI Platinum Debit"}, got.RecommendedCards)
	assert.Equal(t, []offerView{
		{Vendor: "Swiggy", CreditCard: "HDFC MoneyBack", Offer: "20% off on orders above ₹500"},
		{Vendor: "Zomato", CreditCard: "ICICI Platinum Debit", Offer: "15% off on all food orders"},
	}, got.Offers)
}

func TestInventory(t *testing.T) {
	g := seedPasses()[0]
	g.TextModules = append(g.TextModules, core.TextModule{ID: core.ModuleItems, Header: "Items", Body: "Spinach (2.50), Almond Milk"})
	env := newTestEnv(t, []core.Pass{g})

	rec := env.get(t, "/inventory")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"items":[
		{"item":"Spinach","purchase_date":"2025-07-26"},
		{"item":"Almond Milk","purchase_date":"2025-07-26"}
	]}`, rec.Body.String())
}

func TestInventoryEmptyStore(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.get(t, "/inventory")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"items":[]}`, rec.Body.String())
}

func TestRecommendCardNoSpend(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, httptest.NewRequest(http.MethodPost, "/recommend_card", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func multipartRequest(t *testing.T, field, filename string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		fw, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	} else {
		require.NoError(t, mw.WriteField("note", "no file"))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/analyze_receipt", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestAnalyzeReceipt(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, multipartRequest(t, "file", "receipt.png", []byte("png-bytes")))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"merchant":"Fresh Mart"`)
	assert.Contains(t, rec.Body.String(), `"items":[]`)
}

func TestAnalyzeReceiptErrors(t *testing.T) {
	tests := []struct {
		name   string
		req    func(t *testing.T) *http.Request
		deps   func(*Deps)
		status int
	}{
		{
			name:   "no file part",
			req:    func(t *testing.T) *http.Request { return multipartRequest(t, "", "", nil) },
			status: http.StatusBadRequest,
		},
		{
			name:   "unsupported type",
			req:    func(t *testing.T) *http.Request { return multipartRequest(t, "file", "receipt.txt", []byte("x")) },
			status: http.StatusBadRequest,
		},
		{
			name: "not multipart",
			req: func(t *testing.T) *http.Request {
				return httptest.NewRequest(http.MethodPost, "/api/analyze_receipt", strings.NewReader("{}"))
			},
			status: http.StatusBadRequest,
		},
		{
			name: "model failure",
			req:  func(t *testing.T) *http.Request { return multipartRequest(t, "file", "r.pdf", []byte("%PDF")) },
			deps: func(d *Deps) {
				d.Receipts = services.NewReceiptService(fakeExtractor{err: errors.New("quota")}, memory.New(), core.DefaultCategoryTable(), issuer, nil)
			},
			status: http.StatusBadGateway,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts []func(*Deps)
			if tt.deps != nil {
				opts = append(opts, tt.deps)
			}
			env := newTestEnv(t, nil, opts...)
			rec := env.do(t, tt.req(t))
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.NotEmpty(t, decode[ErrorBody](t, rec).Error)
		})
	}
}

func TestCreateReceipt(t *testing.T) {
	env := newTestEnv(t, nil)

	body := `{"merchant":"Fresh Mart","date":"2025-07-26","total":85.75,"currency":"USD","category":"Groceries",
		"items":[{"description":"Milk","price":2.5}]}`
	rec := env.do(t, httptest.NewRequest(http.MethodPost, "/api/receipts", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	got := decode[createdReceiptView](t, rec)
	assert.True(t, strings.HasPrefix(got.PassID, issuer+"."))
	assert.Equal(t, issuer+".GroceryClass", got.ClassID)
	assert.Equal(t, 1, env.store.Len())

	sum := decode[summaryView](t, env.get(t, "/expenditure/summary?filter=daily"))
	assert.Equal(t, 85.75, sum.TotalSpent, "created receipts are aggregated")
}

func TestCreateReceiptErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"malformed json", `{"merchant":`, http.StatusBadRequest},
		{"empty body", ``, http.StatusBadRequest},
		{"trailing data", `{} {}`, http.StatusBadRequest},
		{"missing merchant", `{"date":"2025-07-26","total":1,"category":"groceries"}`, http.StatusUnprocessableEntity},
		{"bad date", `{"merchant":"m","date":"26/07/2025","total":1,"category":"groceries"}`, http.StatusUnprocessableEntity},
		{"negative total", `{"merchant":"m","date":"2025-07-26","total":-1,"category":"groceries"}`, http.StatusUnprocessableEntity},
		{"unknown category", `{"merchant":"m","date":"2025-07-26","total":1,"category":"pets"}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil)
			rec := env.do(t, httptest.NewRequest(http.MethodPost, "/api/receipts", strings.NewReader(tt.body)))
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, 0, env.store.Len())
		})
	}
}

func TestListInsights(t *testing.T) {
	env := newTestEnv(t, nil)
	pct := decimal.RequireFromString("12.5")
	env.insights.items = []core.Insight{{
		ID:          "ins-1",
		GeneratedAt: time.Date(2025, 7, 26, 9, 0, 0, 0, time.UTC),
		Headline:    "You spent 12.50% less than last month",
		Comparison: core.MonthComparison{
			Current:       core.MonthTotal{Year: 2025, Month: time.July, Total: decimal.NewFromInt(35)},
			Previous:      core.MonthTotal{Year: 2025, Month: time.June, Total: decimal.NewFromInt(40)},
			PercentChange: &pct,
		},
	}}

	rec := env.get(t, "/insights")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 10, env.insights.lastLimit)

	got := decode[insightListView](t, rec)
	require.Len(t, got.Insights, 1)
	assert.Equal(t, "ins-1", got.Insights[0].ID)
	assert.Equal(t, 6, got.Insights[0].PreviousMonth.Month)
	require.NotNil(t, got.Insights[0].PercentChange)
	assert.Equal(t, 12.5, *got.Insights[0].PercentChange)

	env.get(t, "/insights?limit=500")
	assert.Equal(t, 100, env.insights.lastLimit)

	assert.Equal(t, http.StatusBadRequest, env.get(t, "/insights?limit=abc").Code)
	assert.Equal(t, http.StatusBadRequest, env.get(t, "/insights?limit=0").Code)
}

func TestHealthAndReady(t *testing.T) {
	env := newTestEnv(t, nil, func(d *Deps) {
		d.Ready = func(context.Context) error { return errors.New("db down") }
	})

	assert.Equal(t, http.StatusOK, env.get(t, "/healthz").Code)
	assert.Equal(t, http.StatusServiceUnavailable, env.get(t, "/readyz").Code)

	ok := newTestEnv(t, nil)
	assert.Equal(t, http.StatusOK, ok.get(t, "/readyz").Code)
}

func TestMiddlewareChain(t *testing.T) {
	env := newTestEnv(t, seedPasses())

	rec := env.get(t, "/expenditure/total")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/recommend_card", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRateLimit(t *testing.T) {
	env := newTestEnv(t, seedPasses(), func(d *Deps) { d.RateLimitPerMinute = 1 })

	assert.Equal(t, http.StatusOK, env.get(t, "/healthz").Code)
	rec := env.get(t, "/healthz")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.NotEmpty(t, decode[ErrorBody](t, rec).Error)
}

func TestShutdownIsIdempotent(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, env.server.Shutdown(ctx))
	require.NoError(t, env.server.Shutdown(ctx))
}
