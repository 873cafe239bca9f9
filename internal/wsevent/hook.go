package wsevent

import "net/http"

// ConnectionHooks customizes connection lifecycle behavior
type ConnectionHooks[T any] interface {
	// OnVerify is called before upgrading to WebSocket.
	// Return false to reject the connection.
	OnVerify(r *http.Request) (*T, bool, error)

	// OnConnect is called after the WebSocket connection is established
	OnConnect(sctx SessionContext[T])

	// OnDisconnect is called when the WebSocket connection is closed
	OnDisconnect(sctx SessionContext[T])
}

// defaultHooks rejects everything. Callers always supply real hooks;
// this only keeps NewServer total.
type defaultHooks[T any] struct{}

func (h *defaultHooks[T]) OnVerify(*http.Request) (*T, bool, error) {
	return nil, false, nil
}

func (h *defaultHooks[T]) OnConnect(SessionContext[T]) {}

func (h *defaultHooks[T]) OnDisconnect(SessionContext[T]) {}
