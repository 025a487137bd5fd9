package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"raseed/internal/core"

	_ "modernc.org/sqlite"
)

const (
	DefaultListLimit = 10
	MaxListLimit     = 100
)

// SQLiteRepository stores insight snapshots.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	slog.Debug("Insight store ready", "path", dbPath, "schema_version", version)

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

type categoryRow struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

// SaveInsight inserts or replaces a snapshot.
func (r *SQLiteRepository) SaveInsight(ctx context.Context, in core.Insight) error {
	cats := make([]categoryRow, len(in.Categories))
	for i, c := range in.Categories {
		cats[i] = categoryRow{Name: c.Name, Amount: c.Amount.String()}
	}
	catsJSON, err := json.Marshal(cats)
	if err != nil {
		return fmt.Errorf("encode categories: %w", err)
	}

	var pct sql.NullString
	if in.Comparison.PercentChange != nil {
		pct = sql.NullString{String: in.Comparison.PercentChange.String(), Valid: true}
	}

	cur, prev := in.Comparison.Current, in.Comparison.Previous
	_, err = r.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO insights (
			id, generated_at, headline, narrative, pass_id,
			current_year, current_month, current_total, current_count,
			previous_year, previous_month, previous_total, previous_count,
			percent_change, categories
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.ID, in.GeneratedAt.UnixNano(), in.Headline, in.Narrative, in.PassID,
		cur.Year, int(cur.Month), cur.Total.String(), cur.PassCount,
		prev.Year, int(prev.Month), prev.Total.String(), prev.PassCount,
		pct, string(catsJSON),
	)
	if err != nil {
		return fmt.Errorf("insert insight: %w", err)
	}

	slog.DebugContext(ctx, "Insight saved to SQLite", "insight_id", in.ID)
	return nil
}

// ListInsights returns up to limit snapshots, newest first. The limit is
// clamped to [1, MaxListLimit]; non-positive values use DefaultListLimit.
func (r *SQLiteRepository) ListInsights(ctx context.Context, limit int) ([]core.Insight, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, generated_at, headline, narrative, pass_id,
			current_year, current_month, current_total, current_count,
			previous_year, previous_month, previous_total, previous_count,
			percent_change, categories
		FROM insights
		ORDER BY generated_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query insights: %w", err)
	}
	defer rows.Close()

	out := []core.Insight{}
	for rows.Next() {
		in, err := scanInsight(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate insights: %w", err)
	}
	return out, nil
}

func scanInsight(rows *sql.Rows) (core.Insight, error) {
	var (
		in                  core.Insight
		generatedAt         int64
		curMonth, prevMonth int
		curTotal, prevTotal string
		pct                 sql.NullString
		catsJSON            string
	)
	err := rows.Scan(
		&in.ID, &generatedAt, &in.Headline, &in.Narrative, &in.PassID,
		&in.Comparison.Current.Year, &curMonth, &curTotal, &in.Comparison.Current.PassCount,
		&in.Comparison.Previous.Year, &prevMonth, &prevTotal, &in.Comparison.Previous.PassCount,
		&pct, &catsJSON,
	)
	if err != nil {
		return core.Insight{}, fmt.Errorf("scan insight: %w", err)
	}

	in.GeneratedAt = time.Unix(0, generatedAt).UTC()
	in.Comparison.Current.Month = time.Month(curMonth)
	in.Comparison.Previous.Month = time.Month(prevMonth)
	if in.Comparison.Current.Total, err = decimal.NewFromString(curTotal); err != nil {
		return core.Insight{}, fmt.Errorf("insight %s current total: %w", in.ID, err)
	}
	if in.Comparison.Previous.Total, err = decimal.NewFromString(prevTotal); err != nil {
		return core.Insight{}, fmt.Errorf("insight %s previous total: %w", in.ID, err)
	}
	if pct.Valid {
		d, err := decimal.NewFromString(pct.String)
		if err != nil {
			return core.Insight{}, fmt.Errorf("insight %s percent change: %w", in.ID, err)
		}
		in.Comparison.PercentChange = &d
	}

	var cats []categoryRow
	if err := json.Unmarshal([]byte(catsJSON), &cats); err != nil {
		return core.Insight{}, fmt.Errorf("insight %s categories: %w", in.ID, err)
	}
	in.Categories = make([]core.CategoryAmount, 0, len(cats))
	for _, c := range cats {
		amount, err := decimal.NewFromString(c.Amount)
		if err != nil {
			return core.Insight{}, fmt.Errorf("insight %s category %s: %w", in.ID, c.Name, err)
		}
		in.Categories = append(in.Categories, core.CategoryAmount{Name: c.Name, Amount: amount})
	}
	return in, nil
}
