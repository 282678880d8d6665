package captcha

// Config holds reCAPTCHA Enterprise configuration.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	ProjectID string `env:"GOOGLE_RECAPTCHA_PROJECT_ID,required"`
	SiteKey   string `env:"GOOGLE_RECAPTCHA_SITE_KEY,required"`
	// CredentialsJSON is the OAuth client credential blob
	// {client_id, client_secret, refresh_token} used to mint access
	// tokens for the assessments API.
	CredentialsJSON string `env:"GOOGLE_CREDENTIALS_JSON,required"`
}
