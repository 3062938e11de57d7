// Package telemetry assembles the Observability bundle from the vendor
// adapters and registers the marketplace's standard instruments.
package telemetry

import (
	"github.com/farmline/marketplace/internal/infrastructure/observability/oteltrace"
	"github.com/farmline/marketplace/internal/infrastructure/observability/prometrics"
	"github.com/farmline/marketplace/internal/observability"
)

type provider struct {
	tracer     observability.Tracer
	logger     observability.Logger
	counters   map[observability.MetricKey]observability.Counter
	histograms map[observability.MetricKey]observability.Histogram
}

// New builds an Observability bundle. Nil arguments fall back to nops;
// unknown metric keys resolve to nop instruments.
func New(
	tracer observability.Tracer,
	logger observability.Logger,
	counters map[observability.MetricKey]observability.Counter,
	histograms map[observability.MetricKey]observability.Histogram,
) observability.Observability {
	if tracer == nil {
		tracer = observability.NopTracer()
	}
	if logger == nil {
		logger = observability.NopLogger()
	}

	p := &provider{
		tracer:     tracer,
		logger:     logger,
		counters:   make(map[observability.MetricKey]observability.Counter, len(counters)),
		histograms: make(map[observability.MetricKey]observability.Histogram, len(histograms)),
	}
	for k, v := range counters {
		if v != nil {
			p.counters[k] = v
		}
	}
	for k, v := range histograms {
		if v != nil {
			p.histograms[k] = v
		}
	}
	return p
}

// Setup wires the standard marketplace telemetry: the global otel tracer, the
// supplied base logger, and prometheus-backed instruments for every metric
// key the application uses.
func Setup(tracerName string, logger observability.Logger, reg prometrics.Registry) observability.Observability {
	counters := map[observability.MetricKey]observability.Counter{
		observability.MUsecaseRequests: reg.Counter(
			string(observability.MUsecaseRequests),
			"Total number of use case invocations.",
			"use_case", "outcome",
		),
		observability.MHTTPRequests: reg.Counter(
			string(observability.MHTTPRequests),
			"Total number of HTTP requests.",
			"method", "route", "status",
		),
		observability.MEventPublishFailed: reg.Counter(
			string(observability.MEventPublishFailed),
			"Count of domain event publish failures.",
			"event",
		),
	}
	histograms := map[observability.MetricKey]observability.Histogram{
		observability.MUsecaseDuration: reg.Histogram(
			string(observability.MUsecaseDuration),
			"Duration of use case execution in seconds.",
			nil,
			"use_case",
		),
		observability.MHTTPRequestDuration: reg.Histogram(
			string(observability.MHTTPRequestDuration),
			"Duration of HTTP requests in seconds.",
			nil,
			"method", "route", "status",
		),
		observability.MCheckoutCartSize: reg.Histogram(
			string(observability.MCheckoutCartSize),
			"Number of distinct products per checkout.",
			[]float64{1, 2, 3, 5, 8, 13, 21},
		),
	}
	return New(oteltrace.New(tracerName), logger, counters, histograms)
}

func (p *provider) Tracer() observability.Tracer { return p.tracer }

func (p *provider) Logger() observability.Logger { return p.logger }

func (p *provider) Metrics() observability.Metrics { return metrics{p: p} }

type metrics struct{ p *provider }

func (m metrics) Counter(name observability.MetricKey) observability.Counter {
	if c, ok := m.p.counters[name]; ok {
		return c
	}
	return observability.NopCounter()
}

func (m metrics) Histogram(name observability.MetricKey) observability.Histogram {
	if h, ok := m.p.histograms[name]; ok {
		return h
	}
	return observability.NopHistogram()
}
