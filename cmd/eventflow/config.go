package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Store backends selectable with STORE_DRIVER or --store.
const (
	storeMemory   = "memory"
	storePostgres = "postgres"
	storeRedis    = "redis"
)

// Config contains application-wide settings sourced from the environment.
type Config struct {
	Addr           string
	Env            string
	StoreDriver    string
	DatabaseURL    string
	DBDriver       string
	RedisURL       string
	CatalogPath    string
	JWTSecret      string
	LogLevel       string
	LogFormat      string
	AllowedOrigins []string
	PaymentDelay   time.Duration
	AuthDelay      time.Duration
	MaxProfiles    int
}

// loadConfig reads config/local.env when present, then the environment,
// then command line flags. Later sources win.
func loadConfig(args []string) (Config, error) {
	_ = godotenv.Load("config/local.env")

	paymentDelay, err := durationEnv("PAYMENT_DELAY", 1200*time.Millisecond)
	if err != nil {
		return Config{}, err
	}
	authDelay, err := durationEnv("AUTH_DELAY", 600*time.Millisecond)
	if err != nil {
		return Config{}, err
	}
	maxProfiles, err := intEnv("MAX_PROFILES", 1024)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Addr:           fmt.Sprintf(":%s", envOrDefault("PORT", "8080")),
		Env:            strings.ToLower(envOrDefault("ENV", "development")),
		StoreDriver:    strings.ToLower(envOrDefault("STORE_DRIVER", storeMemory)),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DBDriver:       envOrDefault("DB_DRIVER", "pgx"),
		RedisURL:       envOrDefault("REDIS_URL", "redis://localhost:6379/0"),
		CatalogPath:    os.Getenv("CATALOG_PATH"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		LogLevel:       envOrDefault("LOG_LEVEL", "info"),
		LogFormat:      envOrDefault("LOG_FORMAT", "json"),
		AllowedOrigins: parseAllowedOrigins(envOrDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173")),
		PaymentDelay:   paymentDelay,
		AuthDelay:      authDelay,
		MaxProfiles:    maxProfiles,
	}

	flags := pflag.NewFlagSet("eventflow", pflag.ContinueOnError)
	flags.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	flags.StringVar(&cfg.StoreDriver, "store", cfg.StoreDriver, "store backend: memory, postgres or redis")
	flags.IntVar(&cfg.MaxProfiles, "max-profiles", cfg.MaxProfiles, "profiles kept in memory before the least recently used is dropped")
	flags.StringVar(&cfg.CatalogPath, "catalog", cfg.CatalogPath, "path to an events YAML file (embedded dataset when empty)")
	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every problem at once.
func (c Config) Validate() error {
	var problems []string

	switch c.StoreDriver {
	case storeMemory, storeRedis:
	case storePostgres:
		if c.DatabaseURL == "" {
			problems = append(problems, "DATABASE_URL is required when STORE_DRIVER=postgres")
		}
		if c.DBDriver != "pgx" && c.DBDriver != "postgres" {
			problems = append(problems, "DB_DRIVER must be one of: pgx, postgres")
		}
	default:
		problems = append(problems, "STORE_DRIVER must be one of: memory, postgres, redis")
	}

	if c.JWTSecret != "" && len(c.JWTSecret) < 16 {
		problems = append(problems, "JWT_SECRET must be at least 16 characters")
	}
	if c.Env == "production" && c.JWTSecret == "" {
		problems = append(problems, "JWT_SECRET is required in production")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.LogLevel] {
		problems = append(problems, "LOG_LEVEL must be one of: debug, info, warn, error")
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		problems = append(problems, "LOG_FORMAT must be one of: json, text")
	}

	if c.PaymentDelay < 0 || c.AuthDelay < 0 {
		problems = append(problems, "PAYMENT_DELAY and AUTH_DELAY must not be negative")
	}
	if c.MaxProfiles < 1 {
		problems = append(problems, "MAX_PROFILES must be at least 1")
	}

	if len(problems) > 0 {
		return errors.New("configuration validation failed:\n  - " + strings.Join(problems, "\n  - "))
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// durationEnv accepts Go durations ("750ms") or a bare number of milliseconds.
func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	if ms, err := strconv.Atoi(raw); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func intEnv(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func parseAllowedOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	var origins []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
