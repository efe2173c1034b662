package logging

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type contextKey string

const (
	// RequestIDKey is the context key for request IDs.
	RequestIDKey contextKey = "request_id"
	// ProfileKey is the context key for the storefront profile serving a request.
	ProfileKey contextKey = "profile"
)

// Config holds logging configuration.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // json, text
	Output io.Writer
}

// New builds a zerolog logger from cfg. Unknown levels fall back to info.
func New(cfg Config) zerolog.Logger {
	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	if cfg.Format == "text" {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: time.RFC3339}
	}

	return zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Str("service", "eventflow").
		Logger()
}

// SetGlobal installs logger as the package-level zerolog logger used by
// middleware and managers.
func SetGlobal(logger zerolog.Logger) {
	log.Logger = logger
}

// WithContext returns the global logger annotated with the request id and
// profile carried by ctx.
func WithContext(ctx context.Context) *zerolog.Logger {
	logger := log.With()

	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		logger = logger.Str("request_id", requestID)
	}
	if profile, ok := ctx.Value(ProfileKey).(string); ok && profile != "" {
		logger = logger.Str("profile", profile)
	}

	contextLogger := logger.Logger()
	return &contextLogger
}

// PersistenceError logs a failed store read or write. Callers fall back to an
// in-memory default afterwards.
func PersistenceError(ctx context.Context, op, key string, err error) {
	WithContext(ctx).Warn().
		Err(err).
		Str("op", op).
		Str("key", key).
		Msg("store access failed")
}
