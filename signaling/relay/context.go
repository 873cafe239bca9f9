package relay

import "context"

// Session is the per-connection state shared by event handlers on one
// WebSocket connection.
type Session struct {
	connID string
	reqCtx context.Context
}
