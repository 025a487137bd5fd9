package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"raseed/internal/core"
	"raseed/internal/log"
	"raseed/internal/passes"
)

type (
	// InsightNarrator phrases an insight in natural language.
	InsightNarrator interface {
		NarrateInsight(ctx context.Context, cmp core.MonthComparison, categories []core.CategoryAmount) (string, error)
	}

	// InsightRepository persists insight snapshots.
	InsightRepository interface {
		SaveInsight(ctx context.Context, in core.Insight) error
		ListInsights(ctx context.Context, limit int) ([]core.Insight, error)
	}

	// InsightPublisher announces generated insights.
	InsightPublisher interface {
		PublishInsight(ctx context.Context, in core.Insight) error
	}

	// InsightPassWriter writes the insight pass and its class.
	InsightPassWriter interface {
		passes.Writer
		passes.ClassWriter
	}
)

// InsightConfig names the wallet resources the insight is written to.
type InsightConfig struct {
	IssuerID     string
	ObjectSuffix string
	ClassSuffix  string
}

// InsightService builds the monthly spending insight, writes it to the
// user's wallet and keeps a history of snapshots.
type InsightService struct {
	expenditure *ExpenditureService
	narrator    InsightNarrator
	writer      InsightPassWriter
	repo        InsightRepository
	publisher   InsightPublisher
	cfg         InsightConfig
	now         func() time.Time
	logger      *log.Logger
}

// InsightDeps groups the collaborators of an InsightService. Narrator and
// Publisher are optional.
type InsightDeps struct {
	Expenditure *ExpenditureService
	Narrator    InsightNarrator
	Writer      InsightPassWriter
	Repository  InsightRepository
	Publisher   InsightPublisher
	Clock       func() time.Time
	Logger      *log.Logger
}

func NewInsightService(deps InsightDeps, cfg InsightConfig) *InsightService {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = log.Wrap(nil, log.ComponentInsight)
	}
	return &InsightService{
		expenditure: deps.Expenditure,
		narrator:    deps.Narrator,
		writer:      deps.Writer,
		repo:        deps.Repository,
		publisher:   deps.Publisher,
		cfg:         cfg,
		now:         deps.Clock,
		logger:      deps.Logger,
	}
}

// Generate computes the current insight, upserts the insight pass, stores a
// snapshot and publishes it. Publishing failures are logged only.
func (s *InsightService) Generate(ctx context.Context) (core.Insight, error) {
	all, err := s.expenditure.FetchAll(ctx)
	if err != nil {
		return core.Insight{}, err
	}
	engine := s.expenditure.Engine()

	cmp, err := engine.MonthlyComparison(all)
	if err != nil {
		return core.Insight{}, fmt.Errorf("compare months: %w", err)
	}
	breakdown, err := engine.Categories(all, string(core.Monthly))
	if err != nil {
		return core.Insight{}, fmt.Errorf("monthly categories: %w", err)
	}

	in := core.Insight{
		ID:          uuid.NewString(),
		GeneratedAt: s.now().UTC(),
		Comparison:  cmp,
		Categories:  breakdown.Categories,
		Headline:    Headline(cmp),
		Narrative:   s.narrate(ctx, cmp, breakdown),
	}

	passID, err := s.writePass(ctx, in)
	if err != nil {
		return core.Insight{}, err
	}
	in.PassID = passID

	if err := s.repo.SaveInsight(ctx, in); err != nil {
		return core.Insight{}, fmt.Errorf("save insight: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishInsight(ctx, in); err != nil {
			s.logger.ErrorContext(ctx, "Failed to publish insight",
				log.FieldInsightID, in.ID, log.FieldOperation, log.OpPublish, log.FieldError, err)
		}
	}

	s.logger.InfoContext(ctx, "Insight generated",
		log.FieldInsightID, in.ID,
		log.FieldPassID, in.PassID,
		log.FieldOperation, log.OpGenerate,
		"headline", in.Headline)
	return in, nil
}

// List returns the most recent insight snapshots, newest first.
func (s *InsightService) List(ctx context.Context, limit int) ([]core.Insight, error) {
	return s.repo.ListInsights(ctx, limit)
}

func (s *InsightService) narrate(ctx context.Context, cmp core.MonthComparison, breakdown core.CategoryBreakdown) string {
	if s.narrator != nil {
		text, err := s.narrator.NarrateInsight(ctx, cmp, breakdown.Categories)
		if err == nil {
			return text
		}
		s.logger.WarnContext(ctx, "Narration failed, using summary text", log.FieldError, err)
	}
	return Narrative(cmp, breakdown)
}

func (s *InsightService) writePass(ctx context.Context, in core.Insight) (string, error) {
	classID := core.QualifiedID(s.cfg.IssuerID, s.cfg.ClassSuffix)
	if err := s.writer.EnsureClass(ctx, classID); err != nil {
		return "", fmt.Errorf("ensure insight class: %w", err)
	}
	objectID := core.QualifiedID(s.cfg.IssuerID, s.cfg.ObjectSuffix)
	p := core.Pass{
		ID:                 objectID,
		ClassID:            classID,
		State:              "ACTIVE",
		CardTitle:          "Raseed Insights",
		Header:             in.Headline,
		HexBackgroundColor: "#0F9D58",
		TextModules: []core.TextModule{
			{ID: core.ModuleSummary, Header: "This month", Body: in.Headline},
			{ID: core.ModuleTrend, Header: "Trend", Body: in.Narrative},
		},
	}
	id, err := s.writer.UpsertPass(ctx, p)
	if err != nil {
		return "", fmt.Errorf("write insight pass: %w", err)
	}
	return id, nil
}

// Headline describes the month-over-month change in one line.
func Headline(cmp core.MonthComparison) string {
	switch {
	case cmp.PercentChange == nil:
		return fmt.Sprintf("You spent %s this month", cmp.Current.Total.StringFixed(2))
	case cmp.PercentChange.IsPositive():
		return fmt.Sprintf("You spent %s%% less than last month", cmp.PercentChange.StringFixed(2))
	case cmp.PercentChange.IsNegative():
		return fmt.Sprintf("You spent %s%% more than last month", cmp.PercentChange.Neg().StringFixed(2))
	default:
		return "Your spending matches last month"
	}
}

// Narrative is the rule-based insight text used when no model is available.
func Narrative(cmp core.MonthComparison, breakdown core.CategoryBreakdown) string {
	var b strings.Builder
	fmt.Fprintf(&b, "This month you spent %s across %d receipts", cmp.Current.Total.StringFixed(2), cmp.Current.PassCount)
	if cmp.Previous.PassCount > 0 {
		fmt.Fprintf(&b, ", compared with %s last month", cmp.Previous.Total.StringFixed(2))
	}
	b.WriteString(".")
	if top, ok := breakdown.Top(); ok {
		fmt.Fprintf(&b, " Most of it went to %s (%s).", top.Name, top.Amount.StringFixed(2))
	}
	return b.String()
}
