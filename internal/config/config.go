// Package config loads server configuration from the environment,
// with optional .env support for local development.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the societyd server configuration.
type Config struct {
	Port     int    `env:"SOCIETY_PORT" envDefault:"8080"`
	Database string `env:"SOCIETY_DB" envDefault:"data/society.db"`
	AdminKey string `env:"SOCIETY_ADMIN_KEY"`
	Seed     int64  `env:"SOCIETY_SEED" envDefault:"42"`
	Players  int    `env:"SOCIETY_PLAYERS" envDefault:"10"`
	LogLevel string `env:"SOCIETY_LOG_LEVEL" envDefault:"info"`
}

// Load reads .env (if present) and parses the environment.
func Load() (Config, error) {
	// Missing .env is fine; the environment still wins.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
