package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	Env  string `env:"ENV" envDefault:"local" validate:"required,oneof=local staging production"`
	Port string `env:"PORT" envDefault:"8080" validate:"required"`

	DatabaseURL string `env:"DATABASE_URL,required" validate:"required"`

	// EncryptionKey is a base64-encoded 32-byte AES-256 key used to seal
	// Connection.EncryptedConfig. See internal/crypto.
	EncryptionKey string `env:"ENCRYPTION_KEY,required" validate:"required"`

	// APIKeyHeader/APIKeys implement the opaque API-key auth model.
	APIKeyHeader string   `env:"API_KEY_HEADER" envDefault:"X-API-Key" validate:"required"`
	APIKeys      []string `env:"API_KEYS" envSeparator:"," validate:"required,min=1"`

	MaxWorkers          int `env:"MAX_WORKERS" envDefault:"10" validate:"min=1,max=200"`
	PollIntervalSec     int `env:"POLL_INTERVAL_SEC" envDefault:"1" validate:"min=1,max=60"`
	DispatchIntervalSec int `env:"DISPATCH_INTERVAL_SEC" envDefault:"60" validate:"min=1,max=600"`
	ReaperIntervalSec   int `env:"REAPER_INTERVAL_SEC" envDefault:"30" validate:"min=1,max=600"`
	HeartbeatTimeoutSec int `env:"HEARTBEAT_TIMEOUT_SEC" envDefault:"30" validate:"min=1"`
	ExecutionTimeoutSec int `env:"EXECUTION_TIMEOUT_SEC" envDefault:"300" validate:"min=1,max=3600"`

	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info" validate:"required,oneof=debug info warn error"`
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

// SlogLevel converts the LOG_LEVEL string to a slog.Level.
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
