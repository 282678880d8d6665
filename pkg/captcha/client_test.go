package captcha_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/saogeraldo/forms-api/pkg/captcha"
)

const testCredentials = `{"client_id":"id","client_secret":"secret","refresh_token":"refresh"}`

func testConfig() captcha.Config {
	return captcha.Config{
		ProjectID:       "test-project",
		SiteKey:         "test-site-key",
		CredentialsJSON: testCredentials,
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *captcha.Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := captcha.New(testConfig(),
		captcha.WithBaseURL(srv.URL),
		captcha.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return client
}

func TestNew_InvalidCredentials(t *testing.T) {
	t.Parallel()

	t.Run("unparseable json", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig()
		cfg.CredentialsJSON = "not json"
		_, err := captcha.New(cfg)
		require.ErrorIs(t, err, captcha.ErrInvalidCredentials)
	})

	t.Run("missing refresh token", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig()
		cfg.CredentialsJSON = `{"client_id":"id","client_secret":"secret"}`
		_, err := captcha.New(cfg)
		require.ErrorIs(t, err, captcha.ErrInvalidCredentials)
	})
}

func TestClient_Assess_Score(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/projects/test-project/assessments", r.URL.Path)

		var body struct {
			Event struct {
				Token   string `json:"token"`
				SiteKey string `json:"siteKey"`
			} `json:"event"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "tok1", body.Event.Token)
		require.Equal(t, "test-site-key", body.Event.SiteKey)

		_, _ = w.Write([]byte(`{
			"tokenProperties": {"valid": true, "action": "contato"},
			"riskAnalysis": {"score": 0.9, "reasons": ["LOW_CONFIDENCE_SCORE"]}
		}`))
	})

	score, err := client.Assess(context.Background(), "tok1", "contato")
	require.NoError(t, err)
	require.NotNil(t, score)
	require.InDelta(t, 0.9, *score, 0.0001)
}

func TestClient_Assess_InvalidToken(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"tokenProperties": {"valid": false, "invalidReason": "EXPIRED"}}`))
	})

	// "Provider says no" is a nil score, not an error.
	score, err := client.Assess(context.Background(), "expired-token", "contato")
	require.NoError(t, err)
	require.Nil(t, score)
}

func TestClient_Assess_ActionMismatchAccepted(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"tokenProperties": {"valid": true, "action": ""},
			"riskAnalysis": {"score": 0.7}
		}`))
	})

	// Checkbox challenges report no action; mismatch is logged, never rejected.
	score, err := client.Assess(context.Background(), "tok1", "cajuina-site-distribuidor")
	require.NoError(t, err)
	require.NotNil(t, score)
	require.InDelta(t, 0.7, *score, 0.0001)
}

func TestClient_Assess_MissingRiskAnalysis(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"tokenProperties": {"valid": true}}`))
	})

	score, err := client.Assess(context.Background(), "tok1", "")
	require.NoError(t, err)
	require.Nil(t, score)
}

func TestClient_Assess_ProviderError(t *testing.T) {
	t.Parallel()

	t.Run("non-2xx", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error": {"message": "permission denied"}}`, http.StatusForbidden)
		})

		_, err := client.Assess(context.Background(), "tok1", "")
		require.ErrorIs(t, err, captcha.ErrAssessmentFailed)
		require.Contains(t, err.Error(), "403")
	})

	t.Run("malformed body", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		})

		_, err := client.Assess(context.Background(), "tok1", "")
		require.ErrorIs(t, err, captcha.ErrAssessmentFailed)
	})
}
