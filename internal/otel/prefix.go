package otel

// Metric prefixes. Each package defines its own metric names and
// prepends one of these via the MetricFactory.
const (
	PrefixSignaling = "signaling"
	PrefixTransport = "transport"
)
