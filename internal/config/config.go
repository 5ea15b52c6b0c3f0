// Package config provides application configuration loading from environment.
package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rain-corsiva-lab/internal-toolkit-sub000/internal/models"
)

// Log formats.
const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

var logLevels = []string{"trace", "debug", "info", "warn", "error", "disabled"}

// Config holds all configuration for the application.
type Config struct {
	LogLevel        string
	LogFormat       string
	DefaultCurrency models.Currency
	// DatabaseURL switches the rate table and quotation store to Postgres.
	// Empty means the in-memory store.
	DatabaseURL string
	// DBMaxConns caps the Postgres pool. Zero keeps the pgxpool default.
	DBMaxConns   int32
	SeedFixtures bool
	ExportDir    string

	// Values that could not be parsed, reported by validate.
	parseErrs []string
}

// UsePostgres reports whether a database is configured.
func (c *Config) UsePostgres() bool {
	return c.DatabaseURL != ""
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel:     strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL"))),
		LogFormat:    strings.ToLower(strings.TrimSpace(os.Getenv("LOG_FORMAT"))),
		DatabaseURL:  strings.TrimSpace(os.Getenv("DATABASE_URL")),
		SeedFixtures: true,
		ExportDir:    ".",
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = LogFormatConsole
	}

	// Kept raw so validate can report it.
	cfg.DefaultCurrency = models.Currency(strings.ToUpper(strings.TrimSpace(os.Getenv("DEFAULT_CURRENCY"))))
	if cfg.DefaultCurrency == "" {
		cfg.DefaultCurrency = models.DefaultCurrency
	}

	if seedStr := strings.TrimSpace(os.Getenv("STORE_SEED_FIXTURES")); seedStr != "" {
		seed, err := strconv.ParseBool(seedStr)
		if err != nil {
			cfg.parseErrs = append(cfg.parseErrs, fmt.Sprintf("STORE_SEED_FIXTURES %q is not a boolean", seedStr))
		} else {
			cfg.SeedFixtures = seed
		}
	}

	if connStr := strings.TrimSpace(os.Getenv("DB_MAX_CONNS")); connStr != "" {
		conns, err := strconv.ParseInt(connStr, 10, 32)
		if err != nil {
			cfg.parseErrs = append(cfg.parseErrs, fmt.Sprintf("DB_MAX_CONNS %q is not a number", connStr))
		} else {
			cfg.DBMaxConns = int32(conns)
		}
	}

	if dir := strings.TrimSpace(os.Getenv("EXPORT_DIR")); dir != "" {
		cfg.ExportDir = dir
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks every setting and reports all problems at once.
func (c *Config) validate() error {
	errs := slices.Clone(c.parseErrs)

	if !slices.Contains(logLevels, c.LogLevel) {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL %q is not one of %s", c.LogLevel, strings.Join(logLevels, ", ")))
	}

	if c.LogFormat != LogFormatConsole && c.LogFormat != LogFormatJSON {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT %q must be %q or %q", c.LogFormat, LogFormatConsole, LogFormatJSON))
	}

	if !c.DefaultCurrency.Valid() {
		errs = append(errs, fmt.Sprintf("DEFAULT_CURRENCY %q is not supported", c.DefaultCurrency))
	}

	if c.DatabaseURL != "" && !strings.HasPrefix(c.DatabaseURL, "postgres://") && !strings.HasPrefix(c.DatabaseURL, "postgresql://") {
		errs = append(errs, "DATABASE_URL must be a postgres:// or postgresql:// URL")
	}

	if c.DBMaxConns < 0 {
		errs = append(errs, fmt.Sprintf("DB_MAX_CONNS %d must not be negative", c.DBMaxConns))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}
