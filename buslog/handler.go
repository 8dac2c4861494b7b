package buslog

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/caomingyu/soulqun/bus"
	"github.com/caomingyu/soulqun/message"
)

// BusHandler is a slog.Handler that mirrors log records onto a
// bus.Bus, so renderers can show engine activity inline with the chat.
type BusHandler struct {
	bus   bus.Bus
	level slog.Level
	attrs []slog.Attr
}

// NewBusHandler creates a handler that forwards records at or above
// the given level.
func NewBusHandler(b bus.Bus, level slog.Level) *BusHandler {
	return &BusHandler{bus: b, level: level}
}

// Enabled reports whether the handler handles records at the given level.
func (h *BusHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level
}

// Handle formats the record into a single line and broadcasts it with
// KindLog, so renderers can style or drop it.
func (h *BusHandler) Handle(ctx context.Context, r slog.Record) error {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "[%s] %s", r.Level, r.Message)
	for _, a := range h.attrs {
		fmt.Fprintf(&buf, " %s=%v", a.Key, a.Value)
	}
	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(&buf, " %s=%v", a.Key, a.Value)
		return true
	})

	return h.bus.Broadcast(&message.Message{
		Kind: message.KindLog,
		Text: buf.String(),
		At:   time.Now(),
	})
}

// WithAttrs returns a handler that prefixes the given attributes.
func (h *BusHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &BusHandler{bus: h.bus, level: h.level, attrs: merged}
}

// WithGroup returns the handler unchanged. Groups are flattened.
func (h *BusHandler) WithGroup(name string) slog.Handler {
	return h
}
