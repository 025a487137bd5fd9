package log

import (
	"maps"
	"slices"
)

// Attribute keys shared by every component.
const (
	FieldComponent     = "component"
	FieldRequestID     = "request_id"
	FieldClientIP      = "client_ip"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldQuery         = "query"
	FieldStatusCode    = "status_code"
	FieldDuration      = "duration_ms"
	FieldUserAgent     = "user_agent"
	FieldError         = "error"
	FieldOperation     = "operation"
	FieldPeriod        = "period"
	FieldClassID       = "class_id"
	FieldPassID        = "pass_id"
	FieldPassCount     = "pass_count"
	FieldSkippedPasses = "skipped_passes"
	FieldCategory      = "category"
	FieldTotal         = "total"
	FieldInsightID     = "insight_id"
)

const (
	ComponentApp         = "app"
	ComponentHTTP        = "http"
	ComponentExpenditure = "expenditure"
	ComponentPasses      = "passes"
	ComponentReceipt     = "receipt"
	ComponentInsight     = "insight"
	ComponentLLM         = "llm"
	ComponentWorker      = "worker"
	ComponentSecurity    = "security"
	ComponentRateLimit   = "rate_limit"
	ComponentTrace       = "trace"
	ComponentBackend     = "backend"
)

const (
	OpFetch     = "fetch"
	OpSummarize = "summarize"
	OpCompare   = "compare"
	OpUpsert    = "upsert"
	OpAnalyze   = "analyze"
	OpGenerate  = "generate"
	OpPublish   = "publish"
	OpList      = "list"
)

// LogFields collects extra attributes for LogError.
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

// WithPassBatch records the size of a fetched pass batch.
func (f LogFields) WithPassBatch(passCount, skipped int) LogFields {
	f[FieldPassCount] = passCount
	f[FieldSkippedPasses] = skipped
	return f
}

// WithPeriod records the period selector a request asked for.
func (f LogFields) WithPeriod(period string) LogFields {
	f[FieldPeriod] = period
	return f
}

// args flattens the fields into slog key/value pairs in key order.
func (f LogFields) args() []any {
	out := make([]any, 0, len(f)*2)
	for _, k := range slices.Sorted(maps.Keys(f)) {
		out = append(out, k, f[k])
	}
	return out
}
