// Package logger provides structured JSON logging with a debug toggle.
// It wraps the standard log/slog package and provides a simple interface for
// application-wide logging.
package logger
