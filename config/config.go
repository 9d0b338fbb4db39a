package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	Env      string `env:"ENV" envDefault:"local" validate:"required,oneof=local staging production"`
	Port     string `env:"PORT" envDefault:"8080" validate:"required"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	DatabaseURL string `env:"DATABASE_URL,required" validate:"required"`

	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`

	JWTSecret      string `env:"JWT_SECRET,required"   validate:"required,min=32"`
	ResendAPIKey   string `env:"RESEND_API_KEY"         validate:"required_if=Env production,required_if=Env staging"`
	ResendFrom     string `env:"RESEND_FROM"            validate:"required_if=Env production,required_if=Env staging"`
	CloudinaryURL  string `env:"CLOUDINARY_URL"         validate:"required_if=Env production,required_if=Env staging"`
	VerifyLinkBase string `env:"VERIFY_LINK_BASE_URL"   envDefault:"http://localhost:8080"`

	DigestCron       string `env:"DIGEST_CRON" envDefault:"0 8 * * *"`
	DigestWindowDays int    `env:"DIGEST_WINDOW_DAYS" envDefault:"7" validate:"min=1,max=31"`
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
