package wsevent

import (
	"net/http"

	"github.com/coder/websocket"
	"golang.org/x/time/rate"

	"github.com/kowshik-thatinati/privacy-calls/internal/log"
)

// ServerOptions tunes the accept path. A zero MessageRate disables
// inbound rate limiting.
type ServerOptions struct {
	AllowedOrigins []string
	MessageRate    rate.Limit
	MessageBurst   int
}

// Server upgrades HTTP requests to WebSocket connections and wires
// each one to the shared event handlers.
type Server[T any] struct {
	Handler[T]
	hooks  ConnectionHooks[T]
	opts   ServerOptions
	logger *log.Logger
}

func NewServer[T any](
	hooks ConnectionHooks[T],
	opts ServerOptions,
	logger *log.Logger,
) *Server[T] {
	if logger == nil {
		panic("logger cannot be nil")
	}
	if hooks == nil {
		hooks = &defaultHooks[T]{}
	}
	return &Server[T]{
		Handler: NewHandler[T](logger),
		hooks:   hooks,
		opts:    opts,
		logger:  logger,
	}
}

// HandleWebSocket handles the WebSocket upgrade and runs the event
// loop until the connection closes.
func (s *Server[T]) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	initValue, passed, err := s.hooks.OnVerify(r)
	if err != nil {
		s.logger.Warn("connection verification error",
			log.String("remote_addr", r.RemoteAddr),
			log.Error(err))
		http.Error(w, "fail to verify", http.StatusInternalServerError)
		return
	} else if !passed {
		s.logger.Info("connection verification failed",
			log.String("remote_addr", r.RemoteAddr))
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	wsConn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.opts.AllowedOrigins,
	})
	if err != nil {
		s.logger.Error("WebSocket open failed",
			log.String("remote_addr", r.RemoteAddr),
			log.Error(err))
		return
	}

	var limiter *rate.Limiter
	if s.opts.MessageRate > 0 {
		limiter = rate.NewLimiter(s.opts.MessageRate, s.opts.MessageBurst)
	}

	stream := newStream(wsConn, limiter, s.logger)
	conn := s.Handler.NewConn(stream, initValue)

	s.logger.Info("WebSocket connection established",
		log.String("remote_addr", r.RemoteAddr),
		log.String("user_agent", r.UserAgent()))

	s.hooks.OnConnect(conn.Context())
	if err := conn.Open(r.Context()); err != nil {
		s.logger.Error("failed to open event connection",
			log.String("remote_addr", r.RemoteAddr),
			log.Error(err))
		s.hooks.OnDisconnect(conn.Context())
		return
	}

	// block until the connection closes
	stream.wait()

	s.hooks.OnDisconnect(conn.Context())
}
