package logger

import (
	"log/slog"
	"os"
)

// New builds the process logger. Debug mode lowers the level and adds
// source locations, matching the DEBUG toggle from configuration.
func New(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	}

	handler := slog.NewJSONHandler(os.Stdout, opts)

	return slog.New(handler).With(
		slog.String("service", "ollama-proxy"),
	)
}
