package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/shopspring/decimal"

	"github.com/rasel9t6/bd-ship-mart-sub000/internal/currency"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	RedisURL           string
	AdminAPIKey        string
	CORSAllowedOrigins []string

	// Conversion rates in force for new orders. Products may override the
	// pair rates; orders snapshot whatever was current at creation time.
	Rates currency.Rates

	// Flat shipping rate table, quoted in BDT.
	ShippingAirBDT decimal.Decimal
	ShippingSeaBDT decimal.Decimal

	// Fallback coupon honoured when the coupon table has no match. Mirrors
	// the storefront's original single hard-coded code.
	CouponFallbackCode    string
	CouponFallbackRateBps int

	CartTTL          time.Duration
	CatalogCacheTTL  time.Duration
	IdempotencyTTL   time.Duration
	OrderLockTTL     time.Duration
	LockRetryBackoff time.Duration

	RateLimitWindow time.Duration
	RateLimitMax    int

	OrdersPerPage int

	LogFormat string
	LogLevel  string

	MetricsNamespace  string
	MetricsBucketsCSV string

	TracingEnabled    bool
	TracingEndpoint   string
	TracingSampling   float64
	TracingExporter   string
	PprofUser         string
	PprofPass         string
	NotifyQueue       string
	WorkerConcurrency int
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		DatabaseURL:        k.String("DATABASE_URL"),
		RedisURL:           k.String("REDIS_URL"),
		AdminAPIKey:        strings.TrimSpace(k.String("ADMIN_API_KEY")),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		Rates: currency.Rates{
			USDToBDT: parseDecimal(k.String("RATE_USD_TO_BDT"), "121.50"),
			CNYToBDT: parseDecimal(k.String("RATE_CNY_TO_BDT"), "17.50"),
			USDToCNY: parseDecimal(k.String("RATE_USD_TO_CNY"), "7"),
		},
		ShippingAirBDT:        parseDecimal(k.String("SHIPPING_AIR_BDT"), "1500"),
		ShippingSeaBDT:        parseDecimal(k.String("SHIPPING_SEA_BDT"), "1000"),
		CouponFallbackCode:    strings.TrimSpace(k.String("COUPON_FALLBACK_CODE")),
		CouponFallbackRateBps: parseInt(k.String("COUPON_FALLBACK_RATE_BPS"), 0),
		CartTTL:               parseDuration(k.String("CART_TTL"), "168h"),
		CatalogCacheTTL:       parseDuration(k.String("CATALOG_CACHE_TTL"), "5m"),
		IdempotencyTTL:        parseDuration(k.String("IDEMPOTENCY_TTL"), "24h"),
		OrderLockTTL:          parseDuration(k.String("ORDER_LOCK_TTL"), "10s"),
		LockRetryBackoff:      parseDuration(k.String("LOCK_RETRY_BACKOFF"), "50ms"),
		RateLimitWindow:       parseDuration(k.String("RATE_LIMIT_WINDOW"), "1m"),
		RateLimitMax:          parseInt(k.String("RATE_LIMIT_MAX"), 120),
		OrdersPerPage:         parseInt(k.String("ORDERS_PER_PAGE"), 20),
		LogFormat:             valueOrDefault(k.String("LOG_FORMAT"), "json"),
		LogLevel:              valueOrDefault(k.String("LOG_LEVEL"), "info"),
		MetricsNamespace:      valueOrDefault(k.String("METRICS_NAMESPACE"), "shipmart"),
		MetricsBucketsCSV:     valueOrDefault(k.String("METRICS_BUCKETS_MS"), "5,10,25,50,100,250,500,1000,2500"),
		TracingEnabled:        parseBool(k.String("OTEL_ENABLED"), false),
		TracingEndpoint:       strings.TrimSpace(k.String("OTEL_EXPORTER_OTLP_ENDPOINT")),
		TracingSampling:       parseFloat(k.String("OTEL_SAMPLING_RATIO"), 1),
		TracingExporter:       valueOrDefault(k.String("OTEL_TRACES_EXPORTER"), "otlp"),
		PprofUser:             strings.TrimSpace(k.String("PPROF_USER")),
		PprofPass:             strings.TrimSpace(k.String("PPROF_PASS")),
		NotifyQueue:           valueOrDefault(k.String("NOTIFY_QUEUE"), "notifications"),
		WorkerConcurrency:     parseInt(k.String("WORKER_CONCURRENCY"), 10),
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}
	if err := cfg.Rates.Validate(); err != nil {
		return nil, fmt.Errorf("conversion rates: %w", err)
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseInt(value string, fallback int) int {
	if parsed, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
		return parsed
	}
	return fallback
}

func parseBool(value string, fallback bool) bool {
	if parsed, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
		return parsed
	}
	return fallback
}

func parseFloat(value string, fallback float64) float64 {
	if parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
		return parsed
	}
	return fallback
}

func parseDecimal(value, fallback string) decimal.Decimal {
	if d, err := decimal.NewFromString(strings.TrimSpace(value)); err == nil {
		return d
	}
	return decimal.RequireFromString(fallback)
}

// MustLoad behaves like Load but panics on error. Useful for command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
