package wsevent

import (
	"context"
	"encoding/json"
	"io"
	"sync/atomic"

	"github.com/kowshik-thatinati/privacy-calls/internal/errors"
	"github.com/kowshik-thatinati/privacy-calls/internal/log"
)

type handlerFunc[T any] func(context.Context, *connImpl[T], *Envelope)

type connImpl[T any] struct {
	stream  ObjectStream
	sctx    SessionContext[T]
	handler handlerFunc[T]
	closed  atomic.Bool
	logger  *log.Logger
}

func newConn[T any](
	stream ObjectStream,
	v *T,
	handler handlerFunc[T],
	logger *log.Logger,
) *connImpl[T] {
	c := &connImpl[T]{
		stream:  stream,
		handler: handler,
		logger:  logger,
	}
	c.sctx = NewContext[T](c, v)
	return c
}

func (c *connImpl[T]) Open(ctx context.Context) error {
	if err := c.stream.Open(ctx); err != nil {
		return err
	}

	go c.readLoop(ctx)
	return nil
}

func (c *connImpl[T]) Close() error {
	return c.close(nil)
}

func (c *connImpl[T]) Context() SessionContext[T] {
	return c.sctx
}

func (c *connImpl[T]) Send(ctx context.Context, event string, data interface{}) error {
	if c.closed.Load() {
		return errors.New(ErrClosed, "send on closed connection")
	}

	env := &Envelope{Event: event}
	if data != nil {
		bs, err := json.Marshal(data)
		if err != nil {
			return errors.Wrapf(ErrInvalidPayload, err, "marshal %s payload", event)
		}
		env.Data = bs
	}
	return c.stream.Write(ctx, env)
}

func (c *connImpl[T]) close(err error) error {
	if !c.closed.CompareAndSwap(false, true) {
		return errors.New(ErrClosed, "already closed")
	}

	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		c.logger.Debug("connection closing after error", log.Error(err))
	}

	return c.stream.Close()
}

func (c *connImpl[T]) readLoop(ctx context.Context) {
	for {
		var env Envelope
		if err := c.stream.Read(ctx, &env); err != nil {
			_ = c.close(err)
			return
		}

		if env.Event == "" {
			c.logger.Warn("envelope without event ignored")
			continue
		}

		c.handler(ctx, c, &env)
	}
}
