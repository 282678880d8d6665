package logger

import (
	"context"
	"errors"
	"log/slog"
	"slices"
)

// fanout mirrors every record to a set of target handlers, pairing the
// stdout JSON handler with the Sentry handler. A record is delivered to
// each target that accepts its level; delivery errors are joined so one
// failing target cannot silence the others.
type fanout struct {
	targets []slog.Handler
}

// newFanout combines handlers into a single slog.Handler.
func newFanout(targets ...slog.Handler) *fanout {
	return &fanout{targets: targets}
}

// Enabled reports whether at least one target accepts the level.
func (f *fanout) Enabled(ctx context.Context, level slog.Level) bool {
	return slices.ContainsFunc(f.targets, func(h slog.Handler) bool {
		return h.Enabled(ctx, level)
	})
}

func (f *fanout) Handle(ctx context.Context, rec slog.Record) error {
	var errs []error
	for _, h := range f.targets {
		if !h.Enabled(ctx, rec.Level) {
			continue
		}
		// Clone guards the record's shared attribute backing array.
		if err := h.Handle(ctx, rec.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f *fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	return f.apply(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (f *fanout) WithGroup(name string) slog.Handler {
	return f.apply(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (f *fanout) apply(fn func(slog.Handler) slog.Handler) slog.Handler {
	next := make([]slog.Handler, len(f.targets))
	for i, h := range f.targets {
		next[i] = fn(h)
	}
	return &fanout{targets: next}
}
