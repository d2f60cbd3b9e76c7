package events

import (
	"context"
	"log/slog"
)

// LogHandler wraps an slog.Handler and re-broadcasts every record to the
// event feed, so the live dashboard doubles as a log tail.
type LogHandler struct {
	inner slog.Handler
	b     *Broadcaster
}

// NewLogHandler wraps inner so records also reach b.
func NewLogHandler(inner slog.Handler, b *Broadcaster) *LogHandler {
	return &LogHandler{inner: inner, b: b}
}

func (h *LogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *LogHandler) Handle(ctx context.Context, r slog.Record) error {
	h.b.Broadcast(Log(r.Level.String(), r.Message))
	return h.inner.Handle(ctx, r)
}

func (h *LogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &LogHandler{inner: h.inner.WithAttrs(attrs), b: h.b}
}

func (h *LogHandler) WithGroup(name string) slog.Handler {
	return &LogHandler{inner: h.inner.WithGroup(name), b: h.b}
}
