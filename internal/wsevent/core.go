package wsevent

import (
	"context"

	"github.com/kowshik-thatinati/privacy-calls/internal/log"
)

type handlerImpl[T any] struct {
	events map[string]EventHandler[T]
	logger *log.Logger
}

// NewHandler creates an event dispatcher with the given logger
func NewHandler[T any](logger *log.Logger) Handler[T] {
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &handlerImpl[T]{
		events: make(map[string]EventHandler[T]),
		logger: logger,
	}
}

// On registers an event handler. Register everything before the first
// connection is accepted.
func (s *handlerImpl[T]) On(event string, handler EventHandler[T]) {
	if _, ok := s.events[event]; ok {
		panic("event already defined: " + event)
	}
	s.events[event] = handler
}

func (s *handlerImpl[T]) NewConn(stream ObjectStream, v *T) Conn[T] {
	return newConn(stream, v, s.handle, s.logger)
}

// handle runs in the connection's read loop so events from one client
// are processed in arrival order.
func (s *handlerImpl[T]) handle(_ context.Context, conn *connImpl[T], env *Envelope) {
	s.logger.Debug("event received", log.String("event", env.Event))

	handler, ok := s.events[env.Event]
	if !ok {
		s.logger.Warn("unknown event ignored", log.String("event", env.Event))
		return
	}

	if err := handler(conn.sctx, &env.Data); err != nil {
		s.logger.Warn("event handler failed",
			log.String("event", env.Event),
			log.Error(err))
	}
}
