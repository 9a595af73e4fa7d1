package adapter

import (
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// InstrumentationName identifies the bridge's tracer and meter.
const InstrumentationName = "github.com/srediag/shm-bridge"

// TracerOrNoop returns t, or a tracer that records nothing.
func TracerOrNoop(t trace.Tracer) trace.Tracer {
	if t != nil {
		return t
	}
	return tracenoop.NewTracerProvider().Tracer(InstrumentationName)
}

// MeterOrNoop returns m, or a meter that records nothing.
func MeterOrNoop(m metric.Meter) metric.Meter {
	if m != nil {
		return m
	}
	return metricnoop.NewMeterProvider().Meter(InstrumentationName)
}

// NewLiveMappingsCounter tracks the number of mappings held open.
func NewLiveMappingsCounter(m metric.Meter) (metric.Int64UpDownCounter, error) {
	return MeterOrNoop(m).Int64UpDownCounter(
		"shmbridge.mappings.live",
		metric.WithDescription("Number of file-backed mappings held open."),
		metric.WithUnit("{mapping}"),
	)
}
