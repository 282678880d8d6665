package brevo

// Config holds Brevo transactional email configuration.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	APIKey string `env:"BREVO_API_KEY"`
}
