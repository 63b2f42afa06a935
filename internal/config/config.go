// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on.
	Port string `env:"PORT" envDefault:"8080"`

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	// JWTSecret is the HMAC key bearer tokens are signed with. Required.
	JWTSecret string `env:"JWT_SECRET,required,notEmpty"`

	// LogLevel controls the minimum log level.
	// Valid values: debug, info, warn, error.
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to the Vite dev server. Set CORS_ORIGINS to a comma-separated
	// list to override.
	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"http://localhost:5173" envSeparator:","`

	// MaxBodyBytes caps request bodies, including CSV imports.
	MaxBodyBytes int64 `env:"MAX_BODY_BYTES" envDefault:"1048576"`

	// DefaultTimezone and DefaultBaseCurrency are applied to trips created
	// without them.
	DefaultTimezone     string `env:"DEFAULT_TIMEZONE" envDefault:"UTC"`
	DefaultBaseCurrency string `env:"DEFAULT_BASE_CURRENCY" envDefault:"USD"`

	// ShutdownTimeout bounds how long in-flight requests may run after a
	// termination signal.
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
}

// Load reads configuration from environment variables and returns a Config.
// Variables from the given .env files (default ".env") are loaded first
// without overriding anything already set; missing files are ignored.
// Returns an error naming any required variable that is not set.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config: load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	cfg.CORSOrigins = trimAll(cfg.CORSOrigins)
	if cfg.MaxBodyBytes <= 0 {
		return Config{}, fmt.Errorf("config: MAX_BODY_BYTES must be positive, got %d", cfg.MaxBodyBytes)
	}
	return cfg, nil
}

// trimAll trims each entry and drops empty ones.
func trimAll(in []string) []string {
	var out []string
	for _, s := range in {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}
