package middlewares_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/saogeraldo/forms-api/middlewares"
)

func TestMaxBytes_RejectsOversizedContentLength(t *testing.T) {
	t.Parallel()

	handler := middlewares.MaxBytes(10)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 100)))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, false, body["success"])
	require.Equal(t, "Payload too large", body["error"])
	require.Equal(t, float64(10), body["maxAllowedBytes"])
}

func TestMaxBytes_CapsChunkedBody(t *testing.T) {
	t.Parallel()

	var readErr error
	handler := middlewares.MaxBytes(10)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
	}))

	// Unknown length, so the pre-check cannot fire.
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 100)))
	req.ContentLength = -1
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var maxErr *http.MaxBytesError
	require.ErrorAs(t, readErr, &maxErr)
	require.Equal(t, int64(10), maxErr.Limit)
}

func TestMaxBytes_AllowsSmallBody(t *testing.T) {
	t.Parallel()

	var got []byte
	handler := middlewares.MaxBytes(1024)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("hello"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "hello", string(got))
}

func TestMaxBytes_ZeroLimitUsesDefault(t *testing.T) {
	t.Parallel()

	var readErr error
	handler := middlewares.MaxBytes(0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("hello"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.NoError(t, readErr)
	require.Equal(t, http.StatusOK, rec.Code)
}
