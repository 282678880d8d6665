package middlewares

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime"
)

// DefaultStackSize is the default maximum stack trace size in bytes.
const DefaultStackSize = 4096

// RecoverConfig configures the recover middleware.
type RecoverConfig struct {
	StackSize         int  // Max stack trace size (default: 4096)
	DisablePrintStack bool // Disable stack trace in logs
}

// RecoverOption configures RecoverConfig.
type RecoverOption func(*RecoverConfig)

// WithRecoverStackSize sets the maximum stack trace size.
func WithRecoverStackSize(size int) RecoverOption {
	return func(cfg *RecoverConfig) {
		cfg.StackSize = size
	}
}

// WithRecoverDisablePrintStack disables including stack trace in logs.
func WithRecoverDisablePrintStack() RecoverOption {
	return func(cfg *RecoverConfig) {
		cfg.DisablePrintStack = true
	}
}

// Recover returns middleware that recovers from panics. The panic is logged
// with its stack trace and the client receives a sanitized 500 JSON body
// that never includes the stack.
func Recover(log *slog.Logger, opts ...RecoverOption) Middleware {
	cfg := &RecoverConfig{StackSize: DefaultStackSize}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if cfg.DisablePrintStack {
						log.ErrorContext(r.Context(), "panic recovered", slog.Any("panic", rec))
					} else {
						stack := make([]byte, cfg.StackSize)
						n := runtime.Stack(stack, false)
						log.ErrorContext(r.Context(), "panic recovered",
							slog.Any("panic", rec),
							slog.String("stack", string(stack[:n])),
						)
					}

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]any{
						"success": false,
						"error":   "internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
