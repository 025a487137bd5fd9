package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"raseed/internal/core"
)

// Pass store backends.
const (
	BackendMemory = "memory"
	BackendWallet = "wallet"
)

// DefaultIssuerID is the issuer used by the bundled seed file.
const DefaultIssuerID = "3388000000022979223"

type Config struct {
	// HTTP Server
	Port               string
	RateLimitPerMinute int

	// Logging
	LogLevel string

	// Pass store
	PassBackend          string
	PassSeedFile         string
	WalletIssuerID       string
	PassFetchTimeout     time.Duration
	PassFetchConcurrency int
	ExtraClasses         []string

	// Google service account
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// Aggregation
	CategoryTable string
	Timezone      string

	// Database
	SQLiteDBPath string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Gemini
	GeminiAPIKey string
	GeminiModel  string

	// Insights
	InsightsEnabled     bool
	InsightsInterval    time.Duration
	InsightObjectSuffix string
	InsightClassSuffix  string
}

func Load() *Config {
	backend := getEnv("PASS_BACKEND", BackendMemory)
	issuer := getEnv("WALLET_ISSUER_ID", "")
	if issuer == "" && backend == BackendMemory {
		issuer = DefaultIssuerID
	}

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		LogLevel:           getEnv("LOG_LEVEL", "info"),

		PassBackend:          backend,
		PassSeedFile:         getEnv("PASS_SEED_FILE", "./data/passes.json"),
		WalletIssuerID:       issuer,
		PassFetchTimeout:     getEnvDuration("PASS_FETCH_TIMEOUT", 10*time.Second),
		PassFetchConcurrency: getEnvInt("PASS_FETCH_CONCURRENCY", 4),
		ExtraClasses:         getEnvList("PASS_EXTRA_CLASSES"),

		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", getEnv("GOOGLE_APPLICATION_CREDENTIALS", "")),

		CategoryTable: getEnv("CATEGORY_TABLE", ""),
		Timezone:      getEnv("TIMEZONE", ""),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/raseed.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "raseed"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "insights"),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", getEnv("GOOGLE_API_KEY", "")),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),

		InsightsEnabled:     getEnvBool("INSIGHTS_ENABLED", false),
		InsightsInterval:    getEnvDuration("INSIGHTS_INTERVAL", 24*time.Hour),
		InsightObjectSuffix: getEnv("INSIGHT_OBJECT_SUFFIX", "spending_insight"),
		InsightClassSuffix:  getEnv("INSIGHT_CLASS_SUFFIX", "InsightClass"),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if _, err := c.SlogLevel(); err != nil {
		errors = append(errors, err.Error())
	}

	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitPerMinute))
	}

	switch c.PassBackend {
	case BackendMemory:
	case BackendWallet:
		if c.WalletIssuerID == "" {
			errors = append(errors, "WALLET_ISSUER_ID is required when using wallet backend")
		}
		hasJSON := strings.TrimSpace(c.GoogleServiceAccountJSON) != ""
		hasFile := strings.TrimSpace(c.GoogleServiceAccountFile) != ""
		if !hasJSON && !hasFile {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE must be provided for wallet backend")
		}
		if !hasJSON && hasFile {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid pass backend '%s': must be one of %v", c.PassBackend, []string{BackendMemory, BackendWallet}))
	}

	if strings.Contains(c.WalletIssuerID, ".") {
		errors = append(errors, fmt.Sprintf("invalid issuer id '%s': must not contain '.'", c.WalletIssuerID))
	}

	if c.PassFetchTimeout < 100*time.Millisecond {
		errors = append(errors, fmt.Sprintf("invalid pass fetch timeout %v: must be at least 100ms", c.PassFetchTimeout))
	} else if c.PassFetchTimeout > 5*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid pass fetch timeout %v: must be at most 5 minutes", c.PassFetchTimeout))
	}

	if c.PassFetchConcurrency < 1 {
		errors = append(errors, fmt.Sprintf("invalid pass fetch concurrency %d: must be at least 1", c.PassFetchConcurrency))
	} else if c.PassFetchConcurrency > 64 {
		errors = append(errors, fmt.Sprintf("invalid pass fetch concurrency %d: must be at most 64", c.PassFetchConcurrency))
	}

	if _, err := c.Categories(); err != nil {
		errors = append(errors, fmt.Sprintf("invalid CATEGORY_TABLE: %v", err))
	}

	if _, err := c.Location(); err != nil {
		errors = append(errors, fmt.Sprintf("invalid TIMEZONE '%s': %v", c.Timezone, err))
	}

	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	} else {
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.InsightsInterval < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid insights interval %v: must be at least 1 minute", c.InsightsInterval))
	} else if c.InsightsInterval > 7*24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid insights interval %v: must be at most 7 days", c.InsightsInterval))
	}
	if c.InsightObjectSuffix == "" || c.InsightClassSuffix == "" {
		errors = append(errors, "insight object and class suffixes cannot be empty")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// Categories returns the configured category table, or the default table
// when CATEGORY_TABLE is unset.
func (c *Config) Categories() (core.CategoryTable, error) {
	if strings.TrimSpace(c.CategoryTable) == "" {
		return core.DefaultCategoryTable(), nil
	}
	return core.ParseCategoryTable(c.CategoryTable)
}

// Location returns the time zone used to decide "today". Empty means the
// process local zone.
func (c *Config) Location() (*time.Location, error) {
	if strings.TrimSpace(c.Timezone) == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// SlogLevel maps LOG_LEVEL to a slog level.
func (c *Config) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel)
	}
}

// PassClassIDs returns the issuer-qualified class ids to aggregate over: the
// category table classes followed by any extra classes.
func (c *Config) PassClassIDs(table core.CategoryTable) []string {
	seen := map[string]struct{}{}
	var ids []string
	for _, suffix := range append(table.Suffixes(), c.ExtraClasses...) {
		id := core.QualifiedID(c.WalletIssuerID, suffix)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
