// Package logging configures the process-wide structured logger shared by
// the proxy and the nameserver. This is the ambient slog-based logging the
// teacher repository uses; it is distinct from the fixed-format activity
// logs spec.md §6 mandates (see internal/proxy/activitylog.go and
// internal/nameserver/activitylog.go for those).
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config controls how the shared logger is built.
type Config struct {
	Level            string // DEBUG, INFO, WARN, ERROR (default INFO)
	Component        string // "proxy" or "nameserver"; attached to every line
	Structured       bool
	StructuredFormat string
	IncludePID       bool
	ExtraFields      map[string]string
}

// Configure builds a slog.Logger from cfg and installs it as the process
// default, returning it for callers that want to hold a reference.
func Configure(cfg Config) *slog.Logger {
	level := parseLevel(cfg.Level)
	var handler slog.Handler
	out := io.Writer(os.Stderr)

	attrs := make([]slog.Attr, 0, len(cfg.ExtraFields)+2)
	if cfg.Component != "" {
		attrs = append(attrs, slog.String("component", cfg.Component))
	}
	for k, v := range cfg.ExtraFields {
		attrs = append(attrs, slog.String(k, v))
	}
	if cfg.IncludePID {
		attrs = append(attrs, slog.Int("pid", os.Getpid()))
	}

	if cfg.Structured {
		if strings.ToLower(cfg.StructuredFormat) == "json" {
			handler = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})
		} else {
			// key=value-ish output
			handler = slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})
		}
	} else {
		handler = slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})
	}

	if len(attrs) > 0 {
		handler = handler.WithAttrs(attrs)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func parseLevel(s string) slog.Level {
	s = strings.ToUpper(strings.TrimSpace(s))
	switch s {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
