package httppresentation

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/farmline/marketplace/internal/observability"
	"github.com/farmline/marketplace/internal/observability/logctx"
)

// statusRecorder captures the status code written by the handler chain.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

func (rec *statusRecorder) Write(b []byte) (int, error) {
	if rec.status == 0 {
		rec.status = http.StatusOK
	}
	return rec.ResponseWriter.Write(b)
}

// observabilityMiddleware opens a server span per request, stores a
// request-scoped logger on the context, and records request count and
// duration labeled by method, route pattern, and status.
func (h *Handler) observabilityMiddleware(next http.Handler) http.Handler {
	propagator := propagation.TraceContext{}
	reqCounter := h.tel.Metrics().Counter(observability.MHTTPRequests)
	reqDuration := h.tel.Metrics().Histogram(observability.MHTTPRequestDuration)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		ctx, span := h.tel.Tracer().Start(ctx, "HTTP "+r.Method,
			attribute.String("http.method", r.Method),
			attribute.String("http.target", r.URL.Path),
		)
		defer span.End()

		requestLog := h.log.With(
			observability.F("request_id", chimiddleware.GetReqID(ctx)),
			observability.F("method", r.Method),
			observability.F("path", r.URL.Path),
		)
		ctx = logctx.With(ctx, requestLog)

		rec := &statusRecorder{ResponseWriter: w, status: 0}
		start := time.Now()
		next.ServeHTTP(rec, r.WithContext(ctx))
		elapsed := time.Since(start)

		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		route := chi.RouteContext(ctx).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(rec.status)

		labels := []observability.Label{
			observability.L("method", r.Method),
			observability.L("route", route),
			observability.L("status", status),
		}
		reqCounter.Add(1, labels...)
		reqDuration.Observe(elapsed.Seconds(), labels...)

		span.SetAttributes(
			attribute.String("http.route", route),
			attribute.Int("http.status_code", rec.status),
		)

		requestLog.Info("http_access",
			observability.F("route", route),
			observability.F("status", rec.status),
			observability.F("duration_ms", elapsed.Milliseconds()),
			observability.F("trace_id", traceID(span)),
		)
	})
}

func traceID(span trace.Span) string {
	if sc := span.SpanContext(); sc.HasTraceID() {
		return sc.TraceID().String()
	}
	return ""
}
