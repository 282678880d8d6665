package middlewares

import (
	"encoding/json"
	"net/http"
)

// DefaultMaxBodyBytes is the default request body ceiling (6 MiB).
const DefaultMaxBodyBytes int64 = 6 << 20

// MaxBytes returns middleware that rejects requests whose body exceeds the
// byte ceiling with 413, disclosing the limit. Requests with a declared
// Content-Length over the ceiling are rejected before the body is read;
// chunked bodies are capped by http.MaxBytesReader while streaming.
func MaxBytes(limit int64) Middleware {
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusRequestEntityTooLarge)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"success":         false,
					"error":           "Payload too large",
					"maxAllowedBytes": limit,
				})
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
