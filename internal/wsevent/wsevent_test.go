package wsevent

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/kowshik-thatinati/privacy-calls/internal/log"
)

type WSEventSuite struct {
	suite.Suite
	stream *stubStream
	conn   *connImpl[map[string]string]
}

func TestWSEventSuite(t *testing.T) {
	suite.Run(t, new(WSEventSuite))
}

func (s *WSEventSuite) SetupTest() {
	s.stream = newStubStream()
	handler := func(context.Context, *connImpl[map[string]string], *Envelope) {}
	s.conn = newConn(s.stream, nil, handler, log.NewTest(s.T()))
}

func (s *WSEventSuite) newHandler() *handlerImpl[map[string]string] {
	return NewHandler[map[string]string](log.NewTest(s.T())).(*handlerImpl[map[string]string])
}

func (s *WSEventSuite) newConnWithHandler(handler handlerFunc[map[string]string]) (*connImpl[map[string]string], *stubStream) {
	stream := newStubStream()
	if handler == nil {
		handler = func(context.Context, *connImpl[map[string]string], *Envelope) {}
	}
	conn := newConn(stream, nil, handler, log.NewTest(s.T()))
	return conn, stream
}

func (s *WSEventSuite) TestNewHandlerRequiresLogger() {
	s.Panics(func() {
		NewHandler[map[string]string](nil)
	})
}

func (s *WSEventSuite) TestOnRejectsDuplicateEvents() {
	core := s.newHandler()
	h := func(SessionContext[map[string]string], *json.RawMessage) error {
		return nil
	}
	core.On("join-room", h)
	s.Panics(func() {
		core.On("join-room", h)
	})
}

func (s *WSEventSuite) TestHandleDispatchesRegisteredHandler() {
	core := s.newHandler()
	var gotData string
	core.On("echo", func(_ SessionContext[map[string]string], data *json.RawMessage) error {
		gotData = string(*data)
		return nil
	})
	conn, _ := s.newConnWithHandler(nil)
	env := &Envelope{Event: "echo", Data: json.RawMessage(`{"v":1}`)}
	core.handle(context.Background(), conn, env)
	s.Equal(`{"v":1}`, gotData)
}

func (s *WSEventSuite) TestHandleIgnoresUnknownEvent() {
	core := s.newHandler()
	conn, stream := s.newConnWithHandler(nil)
	env := &Envelope{Event: "missing"}
	s.NotPanics(func() {
		core.handle(context.Background(), conn, env)
	})
	s.Empty(stream.writes)
	s.False(stream.closed)
}

func (s *WSEventSuite) TestHandleToleratesHandlerError() {
	core := s.newHandler()
	core.On("boom", func(SessionContext[map[string]string], *json.RawMessage) error {
		return errors.New("boom")
	})
	conn, stream := s.newConnWithHandler(nil)
	s.NotPanics(func() {
		core.handle(context.Background(), conn, &Envelope{Event: "boom"})
	})
	s.False(stream.closed)
}

func (s *WSEventSuite) TestSendWritesEnvelope() {
	err := s.conn.Send(context.Background(), "user-joined", map[string]string{"userId": "u1"})
	s.Require().NoError(err)
	s.Require().Len(s.stream.writes, 1)
	s.Equal("user-joined", s.stream.writes[0].Event)
	s.JSONEq(`{"userId":"u1"}`, string(s.stream.writes[0].Data))
}

func (s *WSEventSuite) TestSendWithoutPayload() {
	s.Require().NoError(s.conn.Send(context.Background(), "room-expired", nil))
	s.Require().Len(s.stream.writes, 1)
	s.Equal("room-expired", s.stream.writes[0].Event)
	s.Nil(s.stream.writes[0].Data)
}

func (s *WSEventSuite) TestSendRejectsClosedConn() {
	s.conn.closed.Store(true)
	err := s.conn.Send(context.Background(), "user-joined", nil)
	s.Require().ErrorIs(err, ErrClosed)
	s.Empty(s.stream.writes)
}

func (s *WSEventSuite) TestSendPropagatesWriteError() {
	s.stream.writeErr = errors.New("send failed")
	err := s.conn.Send(context.Background(), "user-joined", nil)
	s.Error(err)
}

func (s *WSEventSuite) TestCloseIsIdempotent() {
	s.Require().NoError(s.conn.Close())
	s.True(s.stream.closed)
	s.Require().ErrorIs(s.conn.Close(), ErrClosed)
}

func (s *WSEventSuite) TestReadLoopDispatchesInOrder() {
	var got []string
	handler := func(_ context.Context, _ *connImpl[map[string]string], env *Envelope) {
		got = append(got, env.Event)
	}
	conn, stream := s.newConnWithHandler(handler)
	stream.enqueueRead(&Envelope{Event: "first"})
	stream.enqueueRead(&Envelope{Event: "second"})
	conn.readLoop(context.Background())
	s.Equal([]string{"first", "second"}, got)
	s.True(stream.closed)
}

func (s *WSEventSuite) TestReadLoopSkipsEnvelopeWithoutEvent() {
	var calls int
	handler := func(context.Context, *connImpl[map[string]string], *Envelope) {
		calls++
	}
	conn, stream := s.newConnWithHandler(handler)
	stream.enqueueRead(&Envelope{})
	stream.enqueueRead(&Envelope{Event: "real"})
	conn.readLoop(context.Background())
	s.Equal(1, calls)
}

func (s *WSEventSuite) TestReadLoopClosesOnReadError() {
	conn, stream := s.newConnWithHandler(nil)
	stream.readErr = errors.New("broken pipe")
	conn.readLoop(context.Background())
	s.True(stream.closed)
	s.True(conn.closed.Load())
}

func (s *WSEventSuite) TestSessionContextRoundTrip() {
	v := map[string]string{"userId": "u1"}
	s.conn.Context().Set(&v)
	got := s.conn.Context().Get()
	s.Require().NotNil(got)
	s.Equal("u1", (*got)["userId"])
	s.Equal(s.conn, s.conn.Context().Peer())
}

func (s *WSEventSuite) TestBindValidation() {
	var dst struct {
		RoomID string `json:"roomId" validate:"required,roomid"`
	}

	err := Bind(nil, &dst)
	s.Require().ErrorIs(err, ErrInvalidPayload)

	raw := json.RawMessage(`{"roomId":`)
	err = Bind(&raw, &dst)
	s.Require().ErrorIs(err, ErrInvalidPayload)

	raw = json.RawMessage(`{"roomId":"a b"}`)
	err = Bind(&raw, &dst)
	s.Require().ErrorIs(err, ErrInvalidPayload)

	raw = json.RawMessage(`{"roomId":"team-standup"}`)
	s.Require().NoError(Bind(&raw, &dst))
	s.Equal("team-standup", dst.RoomID)
}

type stubStream struct {
	writes    []*Envelope
	writeErr  error
	readErr   error
	closed    bool
	readQueue []*Envelope
}

func newStubStream() *stubStream {
	return &stubStream{}
}

func (s *stubStream) enqueueRead(env *Envelope) {
	s.readQueue = append(s.readQueue, env)
}

func (s *stubStream) Open(context.Context) error {
	return nil
}

func (s *stubStream) Read(_ context.Context, dst interface{}) error {
	if s.readErr != nil {
		return s.readErr
	}
	if len(s.readQueue) == 0 {
		return io.EOF
	}
	env := s.readQueue[0]
	s.readQueue = s.readQueue[1:]
	out := dst.(*Envelope)
	*out = *env
	return nil
}

func (s *stubStream) Write(_ context.Context, obj interface{}) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	s.writes = append(s.writes, obj.(*Envelope))
	return nil
}

func (s *stubStream) Close() error {
	s.closed = true
	return nil
}
