// Package config loads runtime configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port       string
	DBPath     string
	JWTSecret  string
	SessionTTL time.Duration
}

// Load reads configuration from the environment and performs minimal
// validation. A .env file in the working directory is loaded first if
// present (local development convenience).
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:      fallback(os.Getenv("PORT"), "8080"),
		DBPath:    fallback(os.Getenv("DB_PATH"), "./data/bagelfunds.db"),
		JWTSecret: strings.TrimSpace(os.Getenv("JWT_SECRET")),
	}

	hours := fallback(os.Getenv("SESSION_TTL_HOURS"), "24")
	if ttl, err := strconv.Atoi(hours); err == nil && ttl > 0 {
		cfg.SessionTTL = time.Duration(ttl) * time.Hour
	} else {
		cfg.SessionTTL = 24 * time.Hour
	}

	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}

	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}
