package wsevent

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"golang.org/x/time/rate"

	"github.com/kowshik-thatinati/privacy-calls/internal/errors"
	"github.com/kowshik-thatinati/privacy-calls/internal/log"
)

const (
	ErrRateLimited errors.Code = "rate_limited"
)

const (
	pingInterval = 10 * time.Second
	pingTimeout  = 3 * time.Second
	writeTimeout = 3 * time.Second
	bufMessages  = 32
)

func newStream(conn *websocket.Conn, limiter *rate.Limiter, logger *log.Logger) *wsStream {
	return &wsStream{
		conn:    conn,
		limiter: limiter,
		chBuf:   make(chan func() error, bufMessages),
		logger:  logger,
	}
}

// wsStream wraps a WebSocket connection to implement ObjectStream.
// Writes go through a buffered channel drained by a single pump
// goroutine, so a slow peer backs up its own buffer and is then cut
// off rather than blocking the caller.
type wsStream struct {
	conn    *websocket.Conn
	limiter *rate.Limiter
	chBuf   chan func() error

	connCtx   context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
	logger    *log.Logger
}

// Write enqueues obj for the pump. Only buffer overflow is reported
// as an error; actual write failures close the connection.
func (ws *wsStream) Write(ctx context.Context, obj interface{}) error {
	select {
	case <-ctx.Done():
		return net.ErrClosed
	default:
	}

	action := func() error {
		ctx, cancel := context.WithTimeout(ctx, writeTimeout)
		defer cancel()
		return wsjson.Write(ctx, ws.conn, obj)
	}

	select {
	case ws.chBuf <- action:
		return nil
	default:
		err := errors.New(ErrBufferFull, "send buffer full")
		ws.close(err)
		return err
	}
}

func (ws *wsStream) Read(ctx context.Context, v interface{}) error {
	// read failure leads to connection close
	if err := wsjson.Read(ctx, ws.conn, v); err != nil {
		ws.close(err)
		return err
	}
	if ws.limiter != nil && !ws.limiter.Allow() {
		err := errors.New(ErrRateLimited, "inbound message rate exceeded")
		ws.close(err)
		return err
	}
	return nil
}

func (ws *wsStream) Open(ctx context.Context) error {
	ws.connCtx, ws.cancel = context.WithCancel(ctx)

	go func() {
		err := ws.writePump(ws.connCtx)
		ws.close(err)
	}()

	return nil
}

func (ws *wsStream) Close() error {
	ws.close(nil)
	return nil
}

func (ws *wsStream) close(err error) {
	ws.closeOnce.Do(func() {
		alreadyClosed := false
		code := websocket.StatusNormalClosure

		switch {
		case err == nil:
			ws.logger.Debug("connection closed normally")
		case func() bool {
			closeErr, ok := errors.As[*websocket.CloseError](err)
			return ok && closeErr != nil
		}():
			closeErr, _ := errors.As[websocket.CloseError](err)
			ws.logger.Debug("peer closed connection", log.Any("code", closeErr.Code))
			alreadyClosed = true
		case errors.Is(err, net.ErrClosed):
			alreadyClosed = true
		case errors.Is(err, ErrBufferFull), errors.Is(err, ErrRateLimited):
			ws.logger.Warn("connection dropped", log.Error(err))
			code = websocket.StatusPolicyViolation
		default:
			ws.logger.Warn("connection closed with error", log.Error(err))
			code = websocket.StatusInternalError
		}

		if alreadyClosed {
			_ = ws.conn.CloseNow()
		} else {
			_ = ws.conn.Close(code, "bye")
		}
		ws.cancel()
	})
}

func (ws *wsStream) wait() {
	<-ws.connCtx.Done()
}

func (ws *wsStream) writePump(ctx context.Context) error {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := ws.ping(ctx); err != nil {
				return err
			}
		case action, ok := <-ws.chBuf:
			if !ok {
				return net.ErrClosed
			}
			if err := action(); err != nil {
				return err
			}
		}
	}
}

func (ws *wsStream) ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	return ws.conn.Ping(ctx)
}
