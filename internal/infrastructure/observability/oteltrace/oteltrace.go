// Package oteltrace adapts the global OpenTelemetry tracer to the Tracer
// port. Exporter/provider setup (otel.SetTracerProvider) is the deployment's
// concern; without it spans are no-ops.
package oteltrace

import (
	"context"

	"github.com/farmline/marketplace/internal/observability"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type tracer struct{ t trace.Tracer }

func New(name string) observability.Tracer {
	if name == "" {
		name = "marketplace"
	}
	return &tracer{t: otel.Tracer(name)}
}

func (t *tracer) Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.t.Start(ctx, name, trace.WithAttributes(attrs...))
}
