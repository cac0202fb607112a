// Package config loads and validates scraper configuration from environment
// variables. A .env file in the working directory is honored when present.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for one scraper run.
// Values are populated by Load from environment variables.
type Config struct {
	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// RoutesFile is the path to the JSON route catalog.
	// Defaults to "routes_id.json".
	RoutesFile string

	// Days is the horizon of future travel dates scraped per route.
	// Defaults to 30.
	Days int

	// Concurrency caps the number of in-flight search requests.
	// Defaults to 5.
	Concurrency int

	// ChunkSize is the number of rows per insert/commit during the load
	// phase. Defaults to 400.
	ChunkSize int

	// HTTPTimeout bounds each outbound search call. Defaults to 20s.
	HTTPTimeout time.Duration

	// LogLevel controls the minimum log level. Defaults to "info".
	LogLevel string
}

// Load reads configuration from the environment (after a best-effort .env
// load) and returns a Config. Missing required variables are reported
// together in one error.
func Load() (Config, error) {
	// A missing .env is not an error; real env vars always win.
	_ = godotenv.Load()

	cfg := Config{
		RoutesFile: getEnv("ROUTES_FILE", "routes_id.json"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.Days, err = getEnvInt("SCRAPE_DAYS", 30); err != nil {
		return Config{}, err
	}
	if cfg.Concurrency, err = getEnvInt("SCRAPE_CONCURRENCY", 5); err != nil {
		return Config{}, err
	}
	if cfg.ChunkSize, err = getEnvInt("CHUNK_SIZE", 400); err != nil {
		return Config{}, err
	}
	timeoutSeconds, err := getEnvInt("HTTP_TIMEOUT_SECONDS", 20)
	if err != nil {
		return Config{}, err
	}
	cfg.HTTPTimeout = time.Duration(timeoutSeconds) * time.Second

	if cfg.Days < 1 {
		return Config{}, fmt.Errorf("SCRAPE_DAYS must be at least 1, got %d", cfg.Days)
	}
	if cfg.Concurrency < 1 {
		return Config{}, fmt.Errorf("SCRAPE_CONCURRENCY must be at least 1, got %d", cfg.Concurrency)
	}
	if cfg.ChunkSize < 1 {
		return Config{}, fmt.Errorf("CHUNK_SIZE must be at least 1, got %d", cfg.ChunkSize)
	}

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt parses an integer environment variable, returning fallback when
// the variable is unset or empty and an error when it is set but not a number.
func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}
