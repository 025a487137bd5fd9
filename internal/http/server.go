package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"raseed/internal/core"
	"raseed/internal/log"
	"raseed/internal/middleware/cors"
	"raseed/internal/middleware/ratelimit"
	"raseed/internal/middleware/recovery"
	"raseed/internal/middleware/security"
	"raseed/internal/middleware/trace"
	"raseed/internal/services"
)

// Collaborators the handlers depend on.
type (
	ExpenditureReader interface {
		Summary(ctx context.Context, selector string) (core.Summary, error)
		MonthlyComparison(ctx context.Context) (core.MonthComparison, error)
		Total(ctx context.Context) (core.PeriodTotal, int, error)
		Period(ctx context.Context, selector string) (core.PeriodTotal, error)
		Categories(ctx context.Context, selector string) (core.CategoryBreakdown, error)
		Inventory(ctx context.Context) ([]core.InventoryItem, error)
	}

	CardRecommender interface {
		Recommend(ctx context.Context) (services.Recommendation, error)
	}

	ReceiptProcessor interface {
		Analyze(ctx context.Context, filename string, data []byte) (core.ScannedReceipt, error)
		Create(ctx context.Context, r core.NewReceipt) (passID, classID string, err error)
	}

	InsightLister interface {
		List(ctx context.Context, limit int) ([]core.Insight, error)
	}
)

// Deps groups the server collaborators. Ready is optional and backs /readyz.
type Deps struct {
	Expenditure        ExpenditureReader
	Recommender        CardRecommender
	Receipts           ReceiptProcessor
	Insights           InsightLister
	Ready              func(ctx context.Context) error
	Logger             *log.Logger
	RateLimitPerMinute int
	CORS               cors.Config
}

type Server struct {
	http.Server
	deps        Deps
	logger      *log.Logger
	rateLimiter *ratelimit.Limiter
	detector    *security.Detector
	tracer      *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = log.Wrap(nil, log.ComponentHTTP)
	}
	if deps.CORS.AllowedOrigins == nil {
		deps.CORS = cors.DefaultConfig()
	}

	detector := security.NewDetector()
	s := &Server{
		deps:        deps,
		logger:      deps.Logger,
		detector:    detector,
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: deps.RateLimitPerMinute}),
		tracer:      trace.NewMiddleware(deps.Logger.WithComponent(log.ComponentTrace), detector.ExtractClientIP),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /expenditure/summary", s.handleSummary)
	mux.HandleFunc("GET /expenditure/monthly-comparison", s.handleMonthlyComparison)
	mux.HandleFunc("GET /expenditure/total", s.handleTotal)
	mux.HandleFunc("GET /expenditure/period", s.handlePeriod)
	mux.HandleFunc("GET /expenditure/class-wise", s.handleClassWise)
	mux.HandleFunc("POST /recommend_card", s.handleRecommendCard)
	mux.HandleFunc("GET /inventory", s.handleInventory)

	mux.HandleFunc("POST /api/analyze_receipt", s.handleAnalyzeReceipt)
	mux.HandleFunc("POST /api/receipts", s.handleCreateReceipt)

	mux.HandleFunc("GET /insights", s.handleListInsights)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.chain(mux),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// chain wraps h as trace → recovery → detection → security headers →
// rate limit → CORS → h.
func (s *Server) chain(h http.Handler) http.Handler {
	h = cors.Middleware(s.deps.CORS)(h)
	h = s.rateLimiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).WarnContext(r.Context(),
			"Rate limit exceeded", log.FieldClientIP, s.detector.ExtractClientIP(r))
		TooManyRequestsError().Write(w)
	})(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = s.detector.Middleware(h)
	h = recovery.Middleware(func(w http.ResponseWriter, _ *http.Request) {
		InternalServerError("internal server error").Write(w)
	})(h)
	return s.tracer.Middleware(h)
}

// Shutdown stops the rate limiter and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
