// Package logctx carries a request-scoped Logger through context.Context.
// The HTTP middleware stores a logger enriched with request fields; services
// pick it up with FromOr so their log lines correlate without threading a
// logger parameter through every call.
package logctx

import (
	"context"

	"github.com/farmline/marketplace/internal/observability"
)

type loggerKey struct{}

// With returns a context holding logger. Nil inputs pass through unchanged.
func With(ctx context.Context, logger observability.Logger) context.Context {
	if ctx == nil || logger == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

// From returns the context's logger, or nil when none was stored.
func From(ctx context.Context) observability.Logger {
	if ctx == nil {
		return nil
	}
	logger, _ := ctx.Value(loggerKey{}).(observability.Logger)
	return logger
}

// FromOr returns the context's logger, falling back to the supplied one.
func FromOr(ctx context.Context, fallback observability.Logger) observability.Logger {
	if logger := From(ctx); logger != nil {
		return logger
	}
	return fallback
}
