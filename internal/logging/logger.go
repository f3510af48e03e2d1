package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// standardize renames "error" to "err" so every handler agrees on the key.
func standardize(groups []string, a slog.Attr) slog.Attr {
	if a.Key == "error" {
		a.Key = "err"
	}
	return a
}

// New creates a configured application logger.
// It writes to Stderr so stdout stays free for diagram output.
func New(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: standardize,
	}))
}

// NewJSON creates a JSON logger writing to w, for servers and log shippers.
func NewJSON(level slog.Level, w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: standardize,
	}))
}

// ParseLevel maps a level name to a slog.Level. Unknown names mean info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// FromConfig builds a logger from a level name and a format ("text" or "json").
func FromConfig(level, format string) *slog.Logger {
	if strings.EqualFold(format, "json") {
		return NewJSON(ParseLevel(level), os.Stderr)
	}
	return New(ParseLevel(level))
}

// NewNop returns a no-op logger.
func NewNop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
