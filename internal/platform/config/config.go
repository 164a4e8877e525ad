package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"

	"github.com/oceanBigOne/mre-who-am-i/internal/domain"
)

type Config struct {
	AppEnv    string `env:"APP_ENV" default:"development"`
	AppURL    string `env:"APP_URL" default:"http://localhost:3901"`
	Port      string `env:"PORT" default:"3901"`
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`

	Country     string `env:"COUNTRY" default:"world"`
	AttachPoint string `env:"ATTACH_POINT" default:"head"`
	RedisURL    string `env:"REDIS_URL"`

	SyncInterval        time.Duration `env:"SYNC_INTERVAL" default:"5s"`
	ResourceCallTimeout time.Duration `env:"RESOURCE_CALL_TIMEOUT" default:"2s"`

	EventRateLimit      float64 `env:"EVENT_RATE_LIMIT" default:"20"`
	EventRateBurst      int     `env:"EVENT_RATE_BURST" default:"40"`
	MaxWebSocketClients int     `env:"MAX_WEBSOCKET_CLIENTS" default:"100"`
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

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// BodyLocation returns the validated attach point.
func (c *Config) BodyLocation() domain.AttachPoint {
	return domain.AttachPoint(c.AttachPoint)
}

func validate(cfg *Config) error {
	if cfg.SyncInterval <= 0 {
		return errors.New("SYNC_INTERVAL must be positive")
	}
	if cfg.ResourceCallTimeout <= 0 {
		return errors.New("RESOURCE_CALL_TIMEOUT must be positive")
	}
	if _, err := domain.ParseAttachPoint(cfg.AttachPoint); err != nil {
		return fmt.Errorf("ATTACH_POINT %q: %w", cfg.AttachPoint, err)
	}
	if cfg.EventRateLimit <= 0 || cfg.EventRateBurst < 1 {
		return errors.New("EVENT_RATE_LIMIT must be positive and EVENT_RATE_BURST at least 1")
	}
	if cfg.MaxWebSocketClients < 1 {
		return errors.New("MAX_WEBSOCKET_CLIENTS must be at least 1")
	}
	return nil
}
