package logger

import (
	"context"
	"log/slog"
)

// ContextExtractor extracts a slog attribute from context.
type ContextExtractor func(ctx context.Context) (slog.Attr, bool)

// HandlerDecorator wraps a slog.Handler and injects context-extracted
// attributes during logging. Extraction occurs per-log-call to capture
// fresh request-scoped values such as request IDs.
type HandlerDecorator struct {
	next       slog.Handler
	extractors []ContextExtractor
}

// NewHandlerDecorator creates a decorated handler with context extractors.
// Nil extractors are filtered out.
func NewHandlerDecorator(next slog.Handler, extractors ...ContextExtractor) slog.Handler {
	clean := make([]ContextExtractor, 0, len(extractors))
	for _, ex := range extractors {
		if ex != nil {
			clean = append(clean, ex)
		}
	}
	return &HandlerDecorator{next: next, extractors: clean}
}

func (h *HandlerDecorator) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *HandlerDecorator) Handle(ctx context.Context, rec slog.Record) error {
	for _, ex := range h.extractors {
		if attr, ok := ex(ctx); ok {
			rec.AddAttrs(attr)
		}
	}
	return h.next.Handle(ctx, rec)
}

func (h *HandlerDecorator) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &HandlerDecorator{next: h.next.WithAttrs(attrs), extractors: h.extractors}
}

func (h *HandlerDecorator) WithGroup(name string) slog.Handler {
	return &HandlerDecorator{next: h.next.WithGroup(name), extractors: h.extractors}
}
