package relay

import (
	"go.opentelemetry.io/otel/metric"

	intotel "github.com/kowshik-thatinati/privacy-calls/internal/otel"
)

var (
	// Connection metrics
	connectionsActive metric.Int64UpDownCounter
	connectionsTotal  metric.Int64Counter

	// Room metrics
	roomsActive  metric.Int64UpDownCounter
	roomsExpired metric.Int64Counter

	// Protocol metrics
	joinsTotal        metric.Int64Counter
	joinsRejected     metric.Int64Counter
	leavesTotal       metric.Int64Counter
	forwardsTotal     metric.Int64Counter
	approvalRequests  metric.Int64Counter
	approvalResponses metric.Int64Counter
	sendsFailed       metric.Int64Counter
)

func init() {
	f := intotel.NewFactory("signaling.relay", intotel.PrefixSignaling)

	f.Int64UpDownCounter(&connectionsActive, "connections.active",
		metric.WithDescription("Number of live WebSocket connections"))

	f.Int64Counter(&connectionsTotal, "connections.total",
		metric.WithDescription("Total WebSocket connections established"))

	f.Int64UpDownCounter(&roomsActive, "rooms.active",
		metric.WithDescription("Number of rooms currently in the directory"))

	f.Int64Counter(&roomsExpired, "rooms.expired",
		metric.WithDescription("Total rooms evicted by the idle reaper"))

	f.Int64Counter(&joinsTotal, "joins.total",
		metric.WithDescription("Total successful room joins"))

	f.Int64Counter(&joinsRejected, "joins.rejected",
		metric.WithDescription("Total joins rejected by room capacity"))

	f.Int64Counter(&leavesTotal, "leaves.total",
		metric.WithDescription("Total room departures, explicit or by disconnect"))

	f.Int64Counter(&forwardsTotal, "forwards.total",
		metric.WithDescription("Total handshake payloads relayed"))

	f.Int64Counter(&approvalRequests, "approvals.requests",
		metric.WithDescription("Total approval requests broadcast"))

	f.Int64Counter(&approvalResponses, "approvals.responses",
		metric.WithDescription("Total approval responses routed"))

	f.Int64Counter(&sendsFailed, "sends.failed",
		metric.WithDescription("Total failed outbound event deliveries"))
}
