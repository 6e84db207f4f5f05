package decide

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/ppiankov/ontoguard/internal/decide"

// telemetry holds the instruments recorded per decision. They come from the
// global providers and are no-ops unless the binary installs an SDK.
type telemetry struct {
	tracer   trace.Tracer
	count    metric.Int64Counter
	duration metric.Float64Histogram
}

func newTelemetry() *telemetry {
	meter := otel.Meter(instrumentationName)
	t := &telemetry{tracer: otel.Tracer(instrumentationName)}

	// Instrument creation only fails on invalid names; keep nil instruments
	// in that case and skip recording.
	t.count, _ = meter.Int64Counter(
		"ontoguard.decisions",
		metric.WithDescription("Decisions by outbound status"),
		metric.WithUnit("1"),
	)
	t.duration, _ = meter.Float64Histogram(
		"ontoguard.decision.duration",
		metric.WithDescription("Decision latency including the graph commit"),
		metric.WithUnit("ms"),
	)
	return t
}

func (t *telemetry) record(ctx context.Context, status string, start time.Time) {
	opts := metric.WithAttributes(attribute.String("status", status))
	if t.count != nil {
		t.count.Add(ctx, 1, opts)
	}
	if t.duration != nil {
		t.duration.Record(ctx, float64(time.Since(start).Microseconds())/1000, opts)
	}
}
