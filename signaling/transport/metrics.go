package transport

import (
	"go.opentelemetry.io/otel/metric"

	intotel "github.com/kowshik-thatinati/privacy-calls/internal/otel"
)

var (
	// Room API metrics
	roomsMinted    metric.Int64Counter
	statusServed   metric.Int64Counter
	statusNotFound metric.Int64Counter
)

func init() {
	f := intotel.NewFactory("signaling.transport", intotel.PrefixTransport)

	f.Int64Counter(&roomsMinted, "rooms.minted",
		metric.WithDescription("Total room ids minted via the HTTP API"))

	f.Int64Counter(&statusServed, "status.served",
		metric.WithDescription("Total room status lookups served"))

	f.Int64Counter(&statusNotFound, "status.not_found",
		metric.WithDescription("Status requests for non-existent rooms"))
}
