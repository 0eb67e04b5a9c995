// Package config handles application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
// Fields are populated from environment variables.
type Config struct {
	// Server settings
	Port int    // HTTP port to listen on
	Env  string // development, staging, production

	// Holiday template store
	DatabasePath    string // Path to SQLite file; empty uses the built-in template
	HolidayTemplate string // Template name to load at startup

	// Conversion
	TableCeiling int    // Last Gregorian year served by tables and Minguo lookups
	DefaultLang  string // ja, zh-TW, en

	// Rate limiting (per client address)
	RateLimitRPS   float64 // 0 disables limiting
	RateLimitBurst int

	// Authentication
	APIKey string // API key for /metrics

	// Logging
	LogLevel  string // debug, info, warn, error
	LogFormat string // json, text
}

// Environment constants
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Supported response languages.
const (
	LangJapanese = "ja"
	LangChinese  = "zh-TW"
	LangEnglish  = "en"
)

// Load reads configuration from environment variables.
// In development, it first loads from .env file if present.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	// This is a no-op in production where env vars are set directly
	_ = godotenv.Load()

	cfg := &Config{}

	// Server settings
	cfg.Port = getEnvInt("PORT", 8080)
	cfg.Env = getEnv("ENV", EnvDevelopment)

	// Holiday template store. An explicitly empty DATABASE_PATH turns it off.
	cfg.DatabasePath = getEnvAllowEmpty("DATABASE_PATH", "./data/wareki.db")
	cfg.HolidayTemplate = getEnv("HOLIDAY_TEMPLATE", "ja-2025")

	// Conversion
	cfg.TableCeiling = getEnvInt("TABLE_CEILING", 2100)
	cfg.DefaultLang = getEnv("DEFAULT_LANG", LangJapanese)

	// Rate limiting
	cfg.RateLimitRPS = getEnvFloat("RATE_LIMIT_RPS", 20)
	cfg.RateLimitBurst = getEnvInt("RATE_LIMIT_BURST", 40)

	// Authentication
	cfg.APIKey = getEnv("API_KEY", "")

	// Logging
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.LogFormat = getEnv("LOG_FORMAT", "text")

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration is present and valid.
func (c *Config) Validate() error {
	var errs []error

	// Validate port range
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port))
	}

	// Validate environment
	switch c.Env {
	case EnvDevelopment, EnvStaging, EnvProduction:
		// Valid
	default:
		errs = append(errs, fmt.Errorf("ENV must be one of: development, staging, production; got %q", c.Env))
	}

	// A template name is only needed when there is a store to read it from
	if c.DatabasePath != "" && c.HolidayTemplate == "" {
		errs = append(errs, errors.New("HOLIDAY_TEMPLATE is required when DATABASE_PATH is set"))
	}

	// Tables start at the Minguo epoch and dates stop at year 9999
	if c.TableCeiling < 1912 || c.TableCeiling > 9999 {
		errs = append(errs, fmt.Errorf("TABLE_CEILING must be between 1912 and 9999, got %d", c.TableCeiling))
	}

	switch c.DefaultLang {
	case LangJapanese, LangChinese, LangEnglish:
		// Valid
	default:
		errs = append(errs, fmt.Errorf("DEFAULT_LANG must be one of: ja, zh-TW, en; got %q", c.DefaultLang))
	}

	if c.RateLimitRPS < 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_RPS must not be negative, got %v", c.RateLimitRPS))
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_BURST must be at least 1 when rate limiting is on, got %d", c.RateLimitBurst))
	}

	// Metrics are not left open in production
	if c.Env == EnvProduction && c.APIKey == "" {
		errs = append(errs, errors.New("API_KEY is required in production"))
	}

	// Validate log level
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
		// Valid
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of: debug, info, warn, error; got %q", c.LogLevel))
	}

	// Validate log format
	switch c.LogFormat {
	case "json", "text":
		// Valid
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be one of: json, text; got %q", c.LogFormat))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// UsesStore reports whether holiday templates are read from SQLite.
func (c *Config) UsesStore() bool {
	return c.DatabasePath != ""
}

// RateLimited reports whether per-client rate limiting is on.
func (c *Config) RateLimited() bool {
	return c.RateLimitRPS > 0
}

// getEnv reads an environment variable with a default fallback.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAllowEmpty is like getEnv but keeps a variable that is set to "".
func getEnvAllowEmpty(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

// getEnvInt reads an environment variable as an integer with a default fallback.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvFloat reads an environment variable as a float with a default fallback.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
