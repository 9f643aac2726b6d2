// Package logger provides structured logging for the sigrace runner.
//
// Log output format:
//
//	2006-01-02T15:04:05.000Z LEVEL message key=value key2=value2
//
// Records go to a size-rotated log file and, optionally, to stderr for
// foreground runs.
package logger

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// ///////////////////////////////////////////////
// Levels
// ///////////////////////////////////////////////

// ParseLevel converts a level string to a slog.Level. Supports debug, info,
// warn, and error (case-insensitive); unrecognized strings default to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// levelName returns the display name for a log level.
func levelName(l slog.Level) string {
	switch {
	case l < slog.LevelInfo:
		return "DEBUG"
	case l < slog.LevelWarn:
		return "INFO"
	case l < slog.LevelError:
		return "WARN"
	default:
		return "ERROR"
	}
}

// ///////////////////////////////////////////////
// Handler
// ///////////////////////////////////////////////

// Handler is a slog.Handler that writes single-line records:
//
//	2006-01-02T15:04:05.000Z LEVEL message key=value ...
type Handler struct {
	// w is the destination for formatted records.
	w io.Writer
	// mu serializes writes so concurrent log calls do not interleave.
	mu *sync.Mutex
	// level is the minimum severity this handler emits.
	level slog.Level
	// attrs holds attributes pre-applied via [Handler.WithAttrs].
	attrs []slog.Attr
	// prefix is the dot-separated key prefix set via [Handler.WithGroup].
	prefix string
}

// NewHandler creates a Handler writing to w, dropping records below level.
func NewHandler(w io.Writer, level slog.Level) *Handler {
	return &Handler{w: w, mu: &sync.Mutex{}, level: level}
}

// Enabled reports whether the handler emits records at the given level.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

// Handle formats and writes one record.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder

	b.WriteString(r.Time.UTC().Format("2006-01-02T15:04:05.000Z"))
	b.WriteByte(' ')
	b.WriteString(levelName(r.Level))
	b.WriteByte(' ')
	b.WriteString(r.Message)

	writeAttr := func(a slog.Attr) {
		b.WriteByte(' ')
		if h.prefix != "" {
			b.WriteString(h.prefix)
			b.WriteByte('.')
		}
		b.WriteString(a.Key)
		b.WriteByte('=')
		b.WriteString(a.Value.String())
	}
	for _, a := range h.attrs {
		writeAttr(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(a)
		return true
	})

	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

// WithAttrs returns a Handler with the given attributes pre-applied.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(merged, h.attrs)
	merged = append(merged, attrs...)
	return &Handler{w: h.w, mu: h.mu, level: h.level, attrs: merged, prefix: h.prefix}
}

// WithGroup returns a Handler that prefixes attribute keys with name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	prefix := name
	if h.prefix != "" {
		prefix = h.prefix + "." + name
	}
	return &Handler{w: h.w, mu: h.mu, level: h.level, attrs: h.attrs, prefix: prefix}
}

// ///////////////////////////////////////////////
// Constructor
// ///////////////////////////////////////////////

// New creates a slog.Logger writing to a size-rotated file at logPath. When
// console is non-nil, records are duplicated to it so foreground runs show
// output directly. The returned io.Closer must be closed on shutdown to
// release the rotated file.
func New(logPath string, minLevel slog.Level, maxSizeMB int, console io.Writer) (*slog.Logger, io.Closer, error) {
	lj := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    maxSizeMB,
		MaxBackups: 3,
		MaxAge:     28,
	}

	var w io.Writer = lj
	if console != nil {
		w = io.MultiWriter(lj, console)
	}
	return slog.New(NewHandler(w, minLevel)), lj, nil
}
