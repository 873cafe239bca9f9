package wsevent

import "sync/atomic"

// SessionContext carries per-connection state shared by every event
// handler invoked on that connection.
type SessionContext[T any] interface {
	Get() *T
	Set(value *T)
	Peer() Conn[T]
}

func NewContext[T any](conn Conn[T], v *T) SessionContext[T] {
	c := &contextImpl[T]{
		conn: conn,
	}
	c.v.Store(v)
	return c
}

type contextImpl[T any] struct {
	conn Conn[T]
	v    atomic.Pointer[T]
}

func (c *contextImpl[T]) Set(value *T) {
	c.v.Store(value)
}

func (c *contextImpl[T]) Get() *T {
	return c.v.Load()
}

func (c *contextImpl[T]) Peer() Conn[T] {
	return c.conn
}
