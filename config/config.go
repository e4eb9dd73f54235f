package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	Env      string `env:"ENV" envDefault:"local" validate:"required,oneof=local staging production"`
	Port     string `env:"PORT" envDefault:"8080" validate:"required"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	DatabaseURL string `env:"DATABASE_URL,required" validate:"required"`

	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`

	JWTSecret    string `env:"JWT_SECRET,required"     validate:"required,min=32"`
	JWTIssuer    string `env:"JWT_ISSUER"              envDefault:"taskhive"`
	JWTAudience  string `env:"JWT_AUDIENCE"            envDefault:"taskhive-api"`
	EmailHashKey string `env:"EMAIL_HASH_KEY,required" validate:"required,min=32"`

	TokenSweepIntervalSec int `env:"TOKEN_SWEEP_INTERVAL_SEC" envDefault:"300" validate:"min=10,max=3600"`

	BreachAPITimeoutMS int `env:"BREACH_API_TIMEOUT_MS" envDefault:"800" validate:"min=100,max=10000"`

	ResendAPIKey string `env:"RESEND_API_KEY" validate:"required_if=Env production,required_if=Env staging"`
	ResendFrom   string `env:"RESEND_FROM"    validate:"required_if=Env production,required_if=Env staging"`
	ConfirmBase  string `env:"CONFIRM_BASE_URL" envDefault:"http://localhost:8080"`

	GoogleClientID        string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret    string `env:"GOOGLE_CLIENT_SECRET"`
	MicrosoftClientID     string `env:"MICROSOFT_CLIENT_ID"`
	MicrosoftClientSecret string `env:"MICROSOFT_CLIENT_SECRET"`
}

func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c *Config) TokenSweepInterval() time.Duration {
	return time.Duration(c.TokenSweepIntervalSec) * time.Second
}

func (c *Config) BreachAPITimeout() time.Duration {
	return time.Duration(c.BreachAPITimeoutMS) * time.Millisecond
}
