// Package health exposes liveness probing for the HTTP boundary.
package health

import (
	"encoding/json"
	"net/http"
)

// StatusOK is the status reported by a live process.
const StatusOK = "ok"

// Response is the health check response body.
type Response struct {
	Status string `json:"status"`
}

// LivenessHandler returns a handler that always responds {"status":"ok"}.
// The process serving the request is the entire health surface: the
// pipeline holds no connections or state to probe.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(Response{Status: StatusOK})
	}
}
