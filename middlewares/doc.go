// Package middlewares provides standard net/http middleware for the form
// submission service: CORS, panic recovery, request IDs, and request body
// size limiting.
//
// All middleware follows the functional options pattern:
//
//	r.Use(
//		middlewares.RequestID(),
//		middlewares.Recover(log),
//		middlewares.CORS(),
//		middlewares.MaxBytes(6<<20),
//	)
package middlewares

import "net/http"

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler
