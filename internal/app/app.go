// Package app wires the form submission service together: configuration,
// logging, collaborators, routes, and the HTTP server lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/saogeraldo/forms-api/internal/handler"
	"github.com/saogeraldo/forms-api/internal/pipeline"
	"github.com/saogeraldo/forms-api/middlewares"
	"github.com/saogeraldo/forms-api/pkg/captcha"
	"github.com/saogeraldo/forms-api/pkg/health"
	"github.com/saogeraldo/forms-api/pkg/logger"
	"github.com/saogeraldo/forms-api/pkg/mailer"
	"github.com/saogeraldo/forms-api/pkg/mailer/brevo"
	"github.com/saogeraldo/forms-api/pkg/mailer/resend"
	"github.com/saogeraldo/forms-api/pkg/registry"
	"github.com/saogeraldo/forms-api/templates"
)

const shutdownTimeout = 10 * time.Second

// App is the assembled service.
type App struct {
	cfg    Config
	log    *slog.Logger
	server *http.Server
}

// New assembles the service from configuration. It fails fast on
// misconfiguration (bad credentials, unknown provider) so a broken
// deployment never takes traffic.
func New(cfg Config) (*App, error) {
	level := slog.LevelInfo
	if cfg.Environment == EnvDevelopment {
		level = slog.LevelDebug
	}
	log := logger.NewWithSentry(cfg.Sentry, level, middlewares.RequestIDExtractor())

	risk, err := captcha.New(cfg.Captcha, captcha.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("captcha client: %w", err)
	}

	sender, err := newSender(cfg)
	if err != nil {
		return nil, err
	}

	reg := registry.New(cfg.Mail)
	renderer := mailer.NewRendererWithDir(templates.FS, "email")

	pipe := pipeline.New(reg, risk, renderer, sender, pipeline.WithLogger(log))
	forms := handler.NewForms(pipe, log)

	r := chi.NewRouter()
	r.Use(
		middlewares.RequestID(),
		middlewares.Recover(log),
		middlewares.CORS(),
		middlewares.MaxBytes(cfg.MaxBodyBytes),
	)
	forms.Routes(r)
	r.Get("/health", health.LivenessHandler())

	return &App{
		cfg: cfg,
		log: log,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// newSender selects the transactional email provider.
func newSender(cfg Config) (mailer.Sender, error) {
	switch cfg.EmailProvider {
	case "brevo":
		return brevo.New(cfg.Brevo), nil
	case "resend":
		return resend.New(cfg.Resend), nil
	default:
		return nil, fmt.Errorf("unknown email provider: %q", cfg.EmailProvider)
	}
}

// Run starts the HTTP server and blocks until ctx is canceled or the
// server fails. Shutdown is graceful within shutdownTimeout.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.log.Info("server starting",
			slog.String("address", a.server.Addr),
			slog.String("environment", a.cfg.Environment),
		)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		a.log.Info("server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
