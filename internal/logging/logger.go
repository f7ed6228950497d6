// Package logging defines a minimal structured-logging interface used across
// the project. Implementations wrap slog and zerolog.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "signin finished", "outcome", "ok", "verified", true)
type Logger interface {
	// Debug logs diagnostic detail that is off by default.
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs a warning message for unusual but non-fatal conditions.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs an error message for failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}

// Formats accepted by New.
const (
	FormatText    = "text"
	FormatJSON    = "json"
	FormatPretty  = "pretty"
	FormatZerolog = "zerolog"
)

// New builds a Logger writing to w. "text" and "json" produce slog handlers,
// "pretty" and "zerolog" produce a zerolog logger (console or JSON output).
// A nil writer means os.Stderr so the REPL's stdout stays clean.
func New(w io.Writer, level, format string) Logger {
	if w == nil {
		w = os.Stderr
	}

	switch strings.ToLower(format) {
	case FormatPretty:
		return NewZerologLogger(w, level, true)
	case FormatZerolog:
		return NewZerologLogger(w, level, false)
	case FormatJSON:
		return NewSlogLogger(slog.New(newSlogHandler(w, level, true)))
	default:
		return NewSlogLogger(slog.New(newSlogHandler(w, level, false)))
	}
}

const redacted = "[REDACTED]"

// isSecret reports whether values logged under key must be masked.
func isSecret(key string) bool {
	switch strings.ToLower(key) {
	case "password", "new_password", "old_password", "token", "credential", "passphrase", "code":
		return true
	}
	return false
}

// Discard returns a logger that drops everything.
func Discard() Logger {
	return NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func slogLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
