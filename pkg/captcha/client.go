// Package captcha scores submission tokens against reCAPTCHA Enterprise.
//
// The client distinguishes two very different outcomes:
//
//   - the provider examined the token and rejected it (expired, malformed,
//     already consumed): Assess returns a nil score and no error, which the
//     caller treats as a failed captcha;
//   - the provider could not be asked (credential refresh failure, network
//     error, non-2xx response, malformed body): Assess returns an error.
package captcha

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/saogeraldo/forms-api/pkg/logger"
)

const defaultBaseURL = "https://recaptchaenterprise.googleapis.com"

var (
	// ErrInvalidCredentials indicates the credential blob could not be parsed.
	ErrInvalidCredentials = errors.New("invalid google credentials json")
	// ErrAssessmentFailed indicates the assessments API call did not succeed.
	ErrAssessmentFailed = errors.New("recaptcha assessment failed")
)

// credentials is the subset of a Google OAuth client blob the token
// refresh flow needs.
type credentials struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RefreshToken string `json:"refresh_token"`
}

// Client calls the reCAPTCHA Enterprise assessments API.
type Client struct {
	httpClient *http.Client
	log        *slog.Logger
	baseURL    string
	projectID  string
	siteKey    string
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient overrides the OAuth-authenticated HTTP client.
// Intended for tests that stub the assessments endpoint.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.httpClient = c
		}
	}
}

// WithBaseURL overrides the assessments API base URL.
func WithBaseURL(u string) Option {
	return func(cl *Client) {
		if u != "" {
			cl.baseURL = u
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) {
		if l != nil {
			cl.log = l
		}
	}
}

// New creates a client. The credential blob is parsed eagerly so a
// misconfigured deployment fails at startup, not on the first submission.
func New(cfg Config, opts ...Option) (*Client, error) {
	var creds credentials
	if err := json.Unmarshal([]byte(cfg.CredentialsJSON), &creds); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	if creds.ClientID == "" || creds.ClientSecret == "" || creds.RefreshToken == "" {
		return nil, fmt.Errorf("%w: client_id, client_secret and refresh_token are required", ErrInvalidCredentials)
	}

	c := &Client{
		log:       logger.NewNope(),
		baseURL:   defaultBaseURL,
		projectID: cfg.ProjectID,
		siteKey:   cfg.SiteKey,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		oauthCfg := &oauth2.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			Endpoint:     google.Endpoint,
		}
		ts := oauthCfg.TokenSource(context.Background(), &oauth2.Token{RefreshToken: creds.RefreshToken})
		// oauth2.NewClient refreshes the access token on demand; a failed
		// refresh surfaces as a transport error, never a neutral score.
		c.httpClient = oauth2.NewClient(context.Background(), ts)
	}

	return c, nil
}

// assessmentRequest is the API request body.
type assessmentRequest struct {
	Event struct {
		Token   string `json:"token"`
		SiteKey string `json:"siteKey"`
	} `json:"event"`
}

// assessment is the subset of the API response the pipeline consumes.
type assessment struct {
	TokenProperties *struct {
		Valid         bool   `json:"valid"`
		Action        string `json:"action"`
		InvalidReason string `json:"invalidReason"`
	} `json:"tokenProperties"`
	RiskAnalysis *struct {
		Score   *float64 `json:"score"`
		Reasons []string `json:"reasons"`
	} `json:"riskAnalysis"`
}

// Assess submits the token for scoring. It returns nil (and no error) when
// the provider reports the token invalid, otherwise the risk score in [0,1].
//
// A supplied expectedAction that does not match the recorded action is
// logged and accepted: checkbox-style challenges do not report an action,
// and tightening this would break them.
func (c *Client) Assess(ctx context.Context, token, expectedAction string) (*float64, error) {
	var reqBody assessmentRequest
	reqBody.Event.Token = token
	reqBody.Event.SiteKey = c.siteKey

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", ErrAssessmentFailed, err)
	}

	url := fmt.Sprintf("%s/v1/projects/%s/assessments", c.baseURL, c.projectID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrAssessmentFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssessmentFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: status=%d body=%s", ErrAssessmentFailed, resp.StatusCode, body)
	}

	var result assessment
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrAssessmentFailed, err)
	}

	if result.TokenProperties == nil || !result.TokenProperties.Valid {
		reason := ""
		if result.TokenProperties != nil {
			reason = result.TokenProperties.InvalidReason
		}
		c.log.WarnContext(ctx, "recaptcha token invalid", slog.String("reason", reason))
		return nil, nil
	}

	if expectedAction != "" && result.TokenProperties.Action != expectedAction {
		// Accepted anyway: v2-checkbox challenges carry no action.
		c.log.WarnContext(ctx, "recaptcha action mismatch",
			slog.String("expected", expectedAction),
			slog.String("got", result.TokenProperties.Action),
		)
	}

	if result.RiskAnalysis == nil {
		return nil, nil
	}
	for _, reason := range result.RiskAnalysis.Reasons {
		c.log.DebugContext(ctx, "recaptcha risk reason", slog.String("reason", reason))
	}
	return result.RiskAnalysis.Score, nil
}
