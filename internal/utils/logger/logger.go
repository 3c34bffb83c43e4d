package logger

import (
	"io"
	"strings"

	"golang.org/x/exp/slog"

	"pwvault/internal/config"
	"pwvault/internal/utils/logger/handlers/slogpretty"
)

// New builds the logger for env: a colored pretty handler for local runs,
// JSON for dev and prod.
func New(out io.Writer, env string, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}

	switch env {
	case config.EnvLocal:
		return setupPrettySlog(out, opts)
	default:
		return slog.New(slog.NewJSONHandler(out, opts))
	}
}

// ParseLevel maps debug/info/warn/error to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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

func setupPrettySlog(out io.Writer, opts *slog.HandlerOptions) *slog.Logger {
	handler := slogpretty.PrettyHandlerOptions{SlogOpts: opts}.NewPrettyHandler(out)
	return slog.New(handler)
}
