// Package promexport consumes blocks.MetricSample events and exposes them
// as Prometheus summaries and counters, grounded on the example pack's
// cuemby-warren/pkg/metrics package (package-level metric vars registered
// once via prometheus.MustRegister, a Timer helper for observing
// durations). Unlike the core, which never aggregates metrics itself, this
// adapter is an ordinary processor a caller wires into its own graph.
package promexport

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	blocks "github.com/severstal-digital/typed-blocks"
)

// Exporter holds the registered Prometheus collectors for per-block
// processor latency (p50/p90/p99 via a Summary) and failure counts.
type Exporter struct {
	latency  *prometheus.SummaryVec
	failures *prometheus.CounterVec
}

// New registers latency and failure collectors against reg. Pass
// prometheus.DefaultRegisterer to use the global registry, as the example
// pack's metrics package does.
func New(reg prometheus.Registerer) *Exporter {
	e := &Exporter{
		latency: prometheus.NewSummaryVec(prometheus.SummaryOpts{
			Name:       "typed_blocks_processor_duration_seconds",
			Help:       "Processor invocation duration in seconds.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		}, []string{"block"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "typed_blocks_processor_failures_total",
			Help: "Total number of processor invocations that returned an error.",
		}, []string{"block"}),
	}
	reg.MustRegister(e.latency, e.failures)
	return e
}

// Processor builds a blocks.ProcessorBlock sinking on blocks.MetricSample,
// per the design notes' resolution that a metrics aggregator, if wired at
// all, must be an ordinary processor rather than a core facility.
func (e *Exporter) Processor(opts ...blocks.BlockOption) *blocks.ProcessorBlock {
	return blocks.NewProcessor[blocks.MetricSample, struct{}](func(_ context.Context, in blocks.MetricSample) ([]struct{}, error) {
		e.latency.WithLabelValues(in.Block).Observe(in.Duration.Seconds())
		if in.Err {
			e.failures.WithLabelValues(in.Block).Inc()
		}
		return nil, nil
	}, opts...)
}
