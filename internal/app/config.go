package app

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/saogeraldo/forms-api/pkg/captcha"
	"github.com/saogeraldo/forms-api/pkg/logger"
	"github.com/saogeraldo/forms-api/pkg/mailer/brevo"
	"github.com/saogeraldo/forms-api/pkg/mailer/resend"
	"github.com/saogeraldo/forms-api/pkg/registry"
)

// Environment names recognized by the runtime mode setting.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// Config is the full service configuration, parsed from the environment.
type Config struct {
	Port         int    `env:"PORT" envDefault:"8080"`
	Environment  string `env:"APP_ENV" envDefault:"development"`
	MaxBodyBytes int64  `env:"MAX_BODY_BYTES" envDefault:"6291456"`

	// EmailProvider selects the transactional email provider: "brevo" or "resend".
	EmailProvider string `env:"EMAIL_PROVIDER" envDefault:"brevo"`

	Mail    registry.Config
	Captcha captcha.Config
	Brevo   brevo.Config
	Resend  resend.Config
	Sentry  logger.SentryConfig
}

// LoadConfig parses the environment into a Config. Outside production a
// local .env file is loaded first, when present.
func LoadConfig() (Config, error) {
	if os.Getenv("APP_ENV") != EnvProduction {
		_ = godotenv.Load()
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
