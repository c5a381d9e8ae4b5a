package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/shopspring/decimal"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	CORSAllowedOrigins []string

	TaxRate         decimal.Decimal
	BaseCurrency    string
	ForeignCurrency string
	// ExchangeRate is the static fallback rate (base units per foreign unit).
	// Zero means no configured rate; conversion requests must then carry one.
	ExchangeRate         decimal.Decimal
	ExchangeRateCacheTTL time.Duration

	RedisURL        string
	RateLimitMax    int
	RateLimitWindow time.Duration
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	taxRate, err := parseDecimal(k.String("TAX_RATE"), "0.13")
	if err != nil {
		return nil, fmt.Errorf("TAX_RATE: %w", err)
	}
	exchangeRate, err := parseDecimal(k.String("EXCHANGE_RATE"), "0")
	if err != nil {
		return nil, fmt.Errorf("EXCHANGE_RATE: %w", err)
	}

	cfg := &Config{
		AppEnv:               valueOrDefault(k.String("APP_ENV"), "development"),
		Port:                 valueOrDefault(k.String("PORT"), "8080"),
		CORSAllowedOrigins:   splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		TaxRate:              taxRate,
		BaseCurrency:         strings.ToUpper(valueOrDefault(k.String("BASE_CURRENCY"), "CRC")),
		ForeignCurrency:      strings.ToUpper(valueOrDefault(k.String("FOREIGN_CURRENCY"), "USD")),
		ExchangeRate:         exchangeRate,
		ExchangeRateCacheTTL: parseDuration(k.String("EXCHANGE_RATE_CACHE_TTL"), "15m"),
		RedisURL:             strings.TrimSpace(k.String("REDIS_URL")),
		RateLimitMax:         k.Int("RATE_LIMIT_MAX"),
		RateLimitWindow:      parseDuration(k.String("RATE_LIMIT_WINDOW"), "1m"),
	}

	if cfg.TaxRate.IsNegative() || cfg.TaxRate.GreaterThan(decimal.NewFromInt(1)) {
		return nil, errors.New("TAX_RATE must be between 0 and 1")
	}
	if cfg.ExchangeRate.IsNegative() {
		return nil, errors.New("EXCHANGE_RATE must not be negative")
	}
	if cfg.BaseCurrency == cfg.ForeignCurrency {
		return nil, errors.New("BASE_CURRENCY and FOREIGN_CURRENCY must differ")
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

func parseDecimal(value, fallback string) (decimal.Decimal, error) {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	return decimal.NewFromString(base)
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
