package log

import (
	"context"
	"log/slog"
	"net/http"
)

// RequestLogger writes the start and completion lines of an HTTP request.
type RequestLogger struct {
	logger *Logger
}

func NewRequestLogger(logger *Logger) *RequestLogger {
	return &RequestLogger{logger: logger}
}

// Started logs the incoming request.
func (rl *RequestLogger) Started(ctx context.Context, r *http.Request, clientIP string) {
	rl.logger.InfoContext(ctx, "HTTP request started",
		FieldMethod, r.Method,
		FieldPath, r.URL.Path,
		FieldQuery, r.URL.RawQuery,
		FieldUserAgent, r.UserAgent(),
		FieldClientIP, clientIP)
}

// Completed logs the response status and latency. 4xx responses are logged at
// warn level and 5xx at error level.
func (rl *RequestLogger) Completed(ctx context.Context, r *http.Request, status int, durationMs int64, clientIP string) {
	rl.logger.Log(ctx, LevelForStatus(status), "HTTP request completed",
		FieldMethod, r.Method,
		FieldPath, r.URL.Path,
		FieldStatusCode, status,
		FieldDuration, durationMs,
		FieldClientIP, clientIP)
}

// LevelForStatus maps an HTTP status code to a log level.
func LevelForStatus(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
