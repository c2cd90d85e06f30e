package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const (
	defaultDSN         = "host=localhost user=postgres password=postgres dbname=garage port=5432 sslmode=disable"
	defaultCORSOrigins = "http://localhost:5173"
)

type Config struct {
	HTTPPort    string
	DatabaseDSN string
	JWTSecret   string
	TokenTTL    time.Duration
	CORSOrigins string

	TaxRate              decimal.Decimal
	DefaultLaborCharge   decimal.Decimal
	RequireTasksComplete bool           // done only when every checklist task is completed
	Location             *time.Location // calendar days of reports and charts

	LogLevel       string
	LogFormat      string
	MetricsEnabled bool
}

// Load reads a local .env when present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("DATABASE_DSN", defaultDSN)
	v.SetDefault("TOKEN_TTL", "24h")
	v.SetDefault("CORS_ALLOWED_ORIGINS", defaultCORSOrigins)
	v.SetDefault("TAX_RATE", "0.12")
	v.SetDefault("DEFAULT_LABOR_CHARGE", "533.00")
	v.SetDefault("REQUIRE_TASKS_COMPLETE", true)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("METRICS_ENABLED", true)
	v.SetDefault("TIMEZONE", "Local")

	cfg := &Config{
		HTTPPort:             v.GetString("HTTP_PORT"),
		DatabaseDSN:          v.GetString("DATABASE_DSN"),
		JWTSecret:            v.GetString("JWT_SECRET"),
		TokenTTL:             v.GetDuration("TOKEN_TTL"),
		CORSOrigins:          v.GetString("CORS_ALLOWED_ORIGINS"),
		RequireTasksComplete: v.GetBool("REQUIRE_TASKS_COMPLETE"),
		LogLevel:             v.GetString("LOG_LEVEL"),
		LogFormat:            v.GetString("LOG_FORMAT"),
		MetricsEnabled:       v.GetBool("METRICS_ENABLED"),
	}

	var err error
	if cfg.TaxRate, err = decimal.NewFromString(v.GetString("TAX_RATE")); err != nil {
		return nil, errors.Wrap(err, "TAX_RATE")
	}
	if cfg.DefaultLaborCharge, err = decimal.NewFromString(v.GetString("DEFAULT_LABOR_CHARGE")); err != nil {
		return nil, errors.Wrap(err, "DEFAULT_LABOR_CHARGE")
	}

	if cfg.Location, err = time.LoadLocation(v.GetString("TIMEZONE")); err != nil {
		return nil, errors.Wrap(err, "TIMEZONE")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is not set")
	}
	if len(c.JWTSecret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 characters")
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	if c.TaxRate.IsNegative() || c.TaxRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return errors.New("TAX_RATE must be in [0, 1)")
	}
	if c.DefaultLaborCharge.IsNegative() {
		return errors.New("DEFAULT_LABOR_CHARGE must not be negative")
	}
	return nil
}

// Warnings lists settings still on their development defaults.
func (c *Config) Warnings() []string {
	var out []string
	if c.DatabaseDSN == defaultDSN {
		out = append(out, "DATABASE_DSN uses the development default")
	}
	if c.CORSOrigins == defaultCORSOrigins {
		out = append(out, "CORS_ALLOWED_ORIGINS uses the development default")
	}
	return out
}

// CORSOriginList splits and trims the comma separated origins.
func (c *Config) CORSOriginList() []string {
	parts := strings.Split(c.CORSOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
