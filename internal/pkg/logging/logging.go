// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
)

// ParseLevel maps debug/info/warn/error (any case) to a slog level; unknown values give info.
func ParseLevel(s string) slog.Level {
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

// New builds a JSON logger tagged with module and version.
func New(w io.Writer, module, version, level string) *slog.Logger {
	lvl := ParseLevel(level)
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl <= slog.LevelDebug,
	})
	return slog.New(h).With("module", module, "version", version)
}

// SetDefault installs the logger as slog default and routes the std log package through it.
func SetDefault(module, version, level string) *slog.Logger {
	logger := New(os.Stderr, module, version, level)
	slog.SetDefault(logger)
	log.SetFlags(0)
	log.SetOutput(slog.NewLogLogger(logger.Handler(), slog.LevelInfo).Writer())
	return logger
}
