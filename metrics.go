package blocks

import "time"

// MetricSample is emitted once per processor invocation when WithMetrics is
// set, except for invocations whose input is itself a MetricSample (so a
// consumer of samples does not feed itself), and is routed through the
// graph exactly like any other event. No
// aggregator lives in the core: wire a consumer for it explicitly (see
// adapters/promexport) if per-processor latency reporting is needed.
type MetricSample struct {
	Block    string
	Duration time.Duration
	Err      bool
}
