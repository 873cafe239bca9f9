package wsevent

import (
	"context"
	"encoding/json"
	"io"
)

// EventHandler handles one named client event. The session context is
// shared across all events on the same connection.
type EventHandler[T any] func(sctx SessionContext[T], data *json.RawMessage) error

type Handler[T any] interface {
	pureHandler[T]
	// all connections created by this handler share the same event handlers
	NewConn(stream ObjectStream, v *T) Conn[T]
}

type pureHandler[T any] interface {
	On(event string, handler EventHandler[T])
}

// Conn is one client connection. Send is safe for concurrent use and
// never blocks on a slow peer.
type Conn[T any] interface {
	Send(ctx context.Context, event string, data interface{}) error
	Open(ctx context.Context) error
	Context() SessionContext[T]
	io.Closer
}

type ObjectStream interface {
	Open(ctx context.Context) error
	Read(ctx context.Context, v interface{}) error
	Write(ctx context.Context, obj interface{}) error
	io.Closer
}
