package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID is the standardized key for the extraction run identifier.
	FieldRunID = "run_id"
	// FieldChannel is the standardized key for the stereo channel (left/right).
	FieldChannel = "channel"
	// FieldVideo is the standardized key for the video file being processed.
	FieldVideo = "video"
	// FieldFrame is the standardized key for an absolute frame index.
	FieldFrame = "frame"
	// FieldEventType classifies warnings for filtering.
	FieldEventType = "event_type"
	// FieldImpact is the standardized key for the consequence of a warning.
	FieldImpact = "impact"
)

type contextKey string

const (
	runIDKey   contextKey = "run_id"
	channelKey contextKey = "channel"
	videoKey   contextKey = "video"
)

// WithRunID annotates context with the extraction run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// WithChannel annotates context with the channel being processed.
func WithChannel(ctx context.Context, channel string) context.Context {
	if channel == "" {
		return ctx
	}
	return context.WithValue(ctx, channelKey, channel)
}

// WithVideo annotates context with the video file being processed.
func WithVideo(ctx context.Context, video string) context.Context {
	if video == "" {
		return ctx
	}
	return context.WithValue(ctx, videoKey, video)
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	for _, key := range []contextKey{runIDKey, channelKey, videoKey} {
		if v, ok := ctx.Value(key).(string); ok && v != "" {
			fields = append(fields, slog.String(string(key), v))
		}
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
