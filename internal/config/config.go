// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv string `env:"APP_ENV" default:"development"`
	Host   string `env:"HOST" default:"0.0.0.0"`
	Port   string `env:"PORT" default:"8000"`

	ContestAPIURL string        `env:"CONTEST_API_URL" default:"https://fantasygolfchampionships.shgn.com/api/graphql"`
	ContestID     string        `env:"CONTEST_ID" default:"qqf89w"`
	LookupTimeout time.Duration `env:"LOOKUP_TIMEOUT" default:"5s"`

	// SeedUsers is a comma-separated list of usernames tracked at startup.
	SeedUsers string `env:"SEED_USERS" default:"deufel"`

	KeepaliveInterval time.Duration `env:"SSE_KEEPALIVE_INTERVAL" default:"30s"`

	LogLevel string `env:"LOG_LEVEL" default:"info"`
	// LogFormat is "text", "json", or empty for auto (text on a terminal,
	// json otherwise).
	LogFormat string `env:"LOG_FORMAT"`
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
	if cfg.ContestAPIURL == "" {
		return fmt.Errorf("CONTEST_API_URL is required")
	}
	if cfg.ContestID == "" {
		return fmt.Errorf("CONTEST_ID is required")
	}
	if cfg.LookupTimeout <= 0 {
		return fmt.Errorf("LOOKUP_TIMEOUT must be positive")
	}
	if cfg.KeepaliveInterval <= 0 {
		return fmt.Errorf("SSE_KEEPALIVE_INTERVAL must be positive")
	}
	return nil
}

// Seed returns the configured seed usernames, trimmed and with empty
// elements removed.
func (c *Config) Seed() []string {
	var users []string
	for _, u := range strings.Split(c.SeedUsers, ",") {
		if u = strings.TrimSpace(u); u != "" {
			users = append(users, u)
		}
	}
	return users
}
