package logging

import (
	"context"
	"errors"
	"log/slog"
)

// teeHandler sends each record to every sink that accepts its level. The
// console sink and the JSON log file share one level but differ in format.
type teeHandler []slog.Handler

// TeeHandler duplicates records across handlers. Nil handlers are ignored;
// a single remaining handler is returned as is.
func TeeHandler(handlers ...slog.Handler) slog.Handler {
	var sinks teeHandler
	for _, h := range handlers {
		if h != nil {
			sinks = append(sinks, h)
		}
	}
	switch len(sinks) {
	case 0:
		return NoopHandler{}
	case 1:
		return sinks[0]
	}
	return sinks
}

func (t teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (t teeHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, h := range t {
		if h.Enabled(ctx, record.Level) {
			errs = append(errs, h.Handle(ctx, record.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (t teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return t.derive(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (t teeHandler) WithGroup(name string) slog.Handler {
	return t.derive(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (t teeHandler) derive(fn func(slog.Handler) slog.Handler) teeHandler {
	next := make(teeHandler, len(t))
	for i, h := range t {
		next[i] = fn(h)
	}
	return next
}
