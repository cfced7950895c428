// Package config loads the client configuration from the environment,
// with an optional .env file for local development.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

type Config struct {
	// APIBaseURL is the GameWish backend the client talks to.
	APIBaseURL string `env:"GAMEWISH_API_URL,default=http://localhost:3000/api"`

	// Identity provider settings. The API key is the provider's public
	// web key, not a secret in the credential sense, but it still comes
	// from the environment so deployments can rotate it.
	AuthBaseURL  string `env:"GAMEWISH_AUTH_URL,default=https://identitytoolkit.googleapis.com"`
	AuthTokenURL string `env:"GAMEWISH_AUTH_TOKEN_URL,default=https://securetoken.googleapis.com/v1/token"`
	AuthAPIKey   string `env:"GAMEWISH_AUTH_API_KEY"`

	RequestTimeout time.Duration `env:"GAMEWISH_REQUEST_TIMEOUT,default=15s"`
	LogLevel       string        `env:"GAMEWISH_LOG_LEVEL,default=info"`
}

// Load reads the configuration from the environment. A .env file in the
// working directory is applied first when present; a missing file is not
// an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// SlogLevel maps the configured level name to a slog level, defaulting
// to info for anything unrecognized.
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
