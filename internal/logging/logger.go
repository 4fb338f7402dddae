package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Option configures New.
type Option func(*settings)

type settings struct {
	out  io.Writer
	json bool
}

// WithOutput redirects log output (default: stderr).
func WithOutput(w io.Writer) Option {
	return func(s *settings) {
		s.out = w
	}
}

// WithJSON switches to the JSON handler, for log shippers.
func WithJSON(enabled bool) Option {
	return func(s *settings) {
		s.json = enabled
	}
}

// New creates a configured application logger.
// It writes to Stderr so the terminal runner owns Stdout.
// It standardizes common keys (e.g., "error" -> "err").
func New(level slog.Level, opts ...Option) *slog.Logger {
	s := settings{out: os.Stderr}
	for _, opt := range opts {
		opt(&s)
	}

	handlerOpts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	}
	if s.json {
		return slog.New(slog.NewJSONHandler(s.out, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(s.out, handlerOpts))
}

// NewNop returns a no-op logger.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel maps "debug", "info", "warn" and "error" to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}
