package logging

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"slices"
	"sync"
)

// Renders a record and its accumulated attributes into a single line.
type Formatter interface {
	Format(buf *bytes.Buffer, r slog.Record, attrs []slog.Attr)
}

// Configuration shared by a handler and every handler derived from it.
type shared struct {
	mu        sync.Mutex
	level     slog.LevelVar
	formatter Formatter
	out       io.Writer
}

// Reconfigurable [slog.Handler].
type Handler struct {
	s      *shared
	attrs  []slog.Attr // Attributes bound through WithAttrs, already prefixed.
	prefix string      // Group prefix applied to record attributes.
}

// Creates a handler writing pretty lines to stderr at Info level.
func NewHandler() *Handler {
	s := &shared{out: os.Stderr}
	s.formatter = NewPrettyFormatter(os.Stderr)
	return &Handler{s: s}
}

// Sets the minimum level. Safe for concurrent use.
func (h *Handler) SetLevel(level slog.Level) {
	h.s.level.Set(level)
}

// Replaces the formatter.
func (h *Handler) SetFormatter(f Formatter) {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	h.s.formatter = f
}

// Replaces the output stream.
func (h *Handler) SetStream(w io.Writer) {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	h.s.out = w
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.s.level.Level()
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	attrs := slices.Clone(h.attrs)
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, h.qualify(a))
		return true
	})

	h.s.mu.Lock()
	defer h.s.mu.Unlock()

	var buf bytes.Buffer
	h.s.formatter.Format(&buf, r, attrs)
	_, err := h.s.out.Write(buf.Bytes())
	return err
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := h.clone()
	for _, a := range attrs {
		next.attrs = append(next.attrs, h.qualify(a))
	}
	return next
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := h.clone()
	next.prefix = h.prefix + name + "."
	return next
}

func (h *Handler) clone() *Handler {
	return &Handler{s: h.s, attrs: slices.Clone(h.attrs), prefix: h.prefix}
}

// Applies the group prefix to an attribute key.
func (h *Handler) qualify(a slog.Attr) slog.Attr {
	if h.prefix == "" {
		return a
	}
	return slog.Attr{Key: h.prefix + a.Key, Value: a.Value}
}
