package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

// New creates a JSON-formatted stdout logger with optional context extractors.
func New(level slog.Level, extractors ...ContextExtractor) *slog.Logger {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(NewHandlerDecorator(h, extractors...))
}

// NewNope creates a no-op logger that discards all output.
// Use this as a default when logging is not configured.
func NewNope() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// SentryConfig holds Sentry integration configuration.
type SentryConfig struct {
	DSN         string `env:"SENTRY_DSN"`
	Environment string `env:"SENTRY_ENVIRONMENT" envDefault:"production"`
}

// NewWithSentry creates a logger that writes to stdout and, when a DSN is
// configured, mirrors warnings and errors to Sentry. An empty DSN falls
// back to stdout-only logging so local development needs no Sentry account.
func NewWithSentry(cfg SentryConfig, level slog.Level, extractors ...ContextExtractor) *slog.Logger {
	stdoutHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})

	if cfg.DSN == "" {
		return slog.New(NewHandlerDecorator(stdoutHandler, extractors...))
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		EnableLogs:  true,
	}); err != nil {
		// Graceful degradation: keep stdout logging if Sentry init fails.
		slog.New(stdoutHandler).Error("failed to initialize Sentry", slog.String("error", err.Error()))
		return slog.New(NewHandlerDecorator(stdoutHandler, extractors...))
	}

	sentryHandler := sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   []slog.Level{slog.LevelWarn, slog.LevelError},
	}.NewSentryHandler(context.Background())

	combined := newFanout(stdoutHandler, sentryHandler)
	return slog.New(NewHandlerDecorator(combined, extractors...))
}
