package config

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger writes JSON in production and human readable text elsewhere
func NewLogger(env string) *slog.Logger {
	return NewLoggerTo(env, os.Stdout)
}

// NewLoggerTo is NewLogger writing to w. Development adds source locations;
// any environment other than production logs at debug level.
func NewLoggerTo(env string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelDebug}

	var handler slog.Handler
	switch env {
	case "production":
		opts.Level = slog.LevelInfo
		handler = slog.NewJSONHandler(w, opts)
	case "development":
		opts.AddSource = true
		handler = slog.NewTextHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler).With(
		slog.String("service", "gatepass"),
		slog.String("env", env),
	)
}
