// Package config loads the service configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv      string `env:"APP_ENV" default:"development"`
	Port        string `env:"PORT" default:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`

	// Credential store (GoTrue-compatible auth API).
	AuthAPIURL         string `env:"AUTH_API_URL"`
	AuthAPIKey         string `env:"AUTH_API_KEY"`
	AuthServiceRoleKey string `env:"AUTH_SERVICE_ROLE_KEY"`

	// Where the store redirects after email verification / reset links.
	EmailRedirectURL string `env:"EMAIL_REDIRECT_URL"`

	SessionSecret string        `env:"SESSION_SECRET"`
	SessionMaxAge time.Duration `env:"SESSION_MAX_AGE" default:"168h"` // 7 days

	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`

	AuthRatePerSecond float64 `env:"AUTH_RATE_PER_SECOND" default:"5"`
	AuthRateBurst     int     `env:"AUTH_RATE_BURST" default:"10"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	required := map[string]string{
		"DATABASE_URL":          cfg.DatabaseURL,
		"REDIS_URL":             cfg.RedisURL,
		"AUTH_API_URL":          cfg.AuthAPIURL,
		"AUTH_API_KEY":          cfg.AuthAPIKey,
		"AUTH_SERVICE_ROLE_KEY": cfg.AuthServiceRoleKey,
		"EMAIL_REDIRECT_URL":    cfg.EmailRedirectURL,
		"SESSION_SECRET":        cfg.SessionSecret,
	}
	for name, value := range required {
		if value == "" {
			return fmt.Errorf("%s is required", name)
		}
	}

	if len(cfg.SessionSecret) < 32 {
		return errors.New("SESSION_SECRET must be at least 32 characters")
	}

	for name, value := range map[string]string{
		"AUTH_API_URL":       cfg.AuthAPIURL,
		"EMAIL_REDIRECT_URL": cfg.EmailRedirectURL,
	} {
		u, err := url.Parse(value)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s must be an absolute URL", name)
		}
	}

	return nil
}
