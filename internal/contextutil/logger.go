// Package contextutil carries request-scoped values across package
// boundaries. Today that is just the slog logger attached by the HTTP
// middleware.
package contextutil

import (
	"context"
	"log/slog"
)

type contextKey string

const loggerKey contextKey = "logger"

// LoggerFromContext returns the request logger stored in ctx. When no
// logger was attached, the process default logger is returned, so the
// result is always safe to use.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// LoggerKey returns the context key under which middleware attaches the
// request logger.
func LoggerKey() contextKey {
	return loggerKey
}
