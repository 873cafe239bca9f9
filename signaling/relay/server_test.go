package relay

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/suite"

	"github.com/kowshik-thatinati/privacy-calls/internal/log"
	"github.com/kowshik-thatinati/privacy-calls/internal/wsevent"
)

type ServerSuite struct {
	suite.Suite
	relay  *Relay
	server *Server
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerSuite))
}

func (s *ServerSuite) SetupTest() {
	logger := log.NewTest(s.T())
	s.relay = NewRelay(&Config{
		RoomCapacity:  10,
		IdleThreshold: 30 * time.Minute,
	}, nil, clockwork.NewFakeClock(), logger)
	s.server = NewServer(wsevent.NewHandler[Session](logger), s.relay, logger)
	s.server.Open()
}

func (s *ServerSuite) sessionFor(connID string) (wsevent.SessionContext[Session], *fakeConn) {
	conn := &fakeConn{}
	s.relay.Connect(context.Background(), connID, conn)
	return wsevent.NewContext(nil, &Session{
		connID: connID,
		reqCtx: context.Background(),
	}), conn
}

func raw(v string) *json.RawMessage {
	r := json.RawMessage(v)
	return &r
}

func (s *ServerSuite) TestOpenRejectsDoubleRegistration() {
	s.Panics(func() {
		s.server.register()
	})
}

func (s *ServerSuite) TestJoinRoomEvent() {
	sctx, conn := s.sessionFor("A")
	err := s.server.handleJoinRoom(sctx, raw(`{"roomId":"team-standup","userId":"u1","userName":"Alice"}`))
	s.Require().NoError(err)

	status, ok := s.relay.Status("team-standup")
	s.Require().True(ok)
	s.Equal(1, status.MemberCount)
	s.Require().Len(conn.eventsNamed(EventRoomParticipants), 1)
}

func (s *ServerSuite) TestJoinRoomRejectsBadPayload() {
	sctx, _ := s.sessionFor("A")

	err := s.server.handleJoinRoom(sctx, raw(`{"roomId":"bad room!","userId":"u1","userName":"Alice"}`))
	s.Require().ErrorIs(err, wsevent.ErrInvalidPayload)

	err = s.server.handleJoinRoom(sctx, raw(`{"roomId":"team-standup"}`))
	s.Require().ErrorIs(err, wsevent.ErrInvalidPayload)

	_, ok := s.relay.Status("team-standup")
	s.False(ok)
}

func (s *ServerSuite) TestLeaveRoomEvent() {
	sctx, _ := s.sessionFor("A")
	s.Require().NoError(s.server.handleJoinRoom(sctx, raw(`{"roomId":"r1","userId":"u1","userName":"Alice"}`)))

	s.Require().NoError(s.server.handleLeaveRoom(sctx, nil))
	_, ok := s.relay.Status("r1")
	s.False(ok)
}

func (s *ServerSuite) TestForwardEventsCarryPayload() {
	sctxA, _ := s.sessionFor("A")
	s.Require().NoError(s.server.handleJoinRoom(sctxA, raw(`{"roomId":"r1","userId":"u1","userName":"Alice"}`)))
	sctxB, connB := s.sessionFor("B")
	s.Require().NoError(s.server.handleJoinRoom(sctxB, raw(`{"roomId":"r1","userId":"u2","userName":"Bob"}`)))

	handler := s.server.forward(EventOffer)
	s.Require().NoError(handler(sctxA, raw(`{"sdp":"v=0"}`)))

	offers := connB.eventsNamed(EventOffer)
	s.Require().Len(offers, 1)
	data := offers[0].data.(map[string]json.RawMessage)
	s.JSONEq(`"A"`, string(data["fromConnection"]))
}

func (s *ServerSuite) TestApprovalResponseEvent() {
	sctxA, connA := s.sessionFor("A")
	s.Require().NoError(s.server.handleJoinRoom(sctxA, raw(`{"roomId":"r1","userId":"u1","userName":"Alice"}`)))
	sctxB, _ := s.sessionFor("B")
	s.Require().NoError(s.server.handleJoinRoom(sctxB, raw(`{"roomId":"r1","userId":"u2","userName":"Bob"}`)))

	err := s.server.handleApprovalResponse(sctxB, raw(`{"approved":true,"requesterId":"A"}`))
	s.Require().NoError(err)
	s.Require().Len(connA.eventsNamed(EventApprovalGranted), 1)
}

func (s *ServerSuite) TestApprovalResponseRequiresRequesterID() {
	sctxB, _ := s.sessionFor("B")
	s.Require().NoError(s.server.handleJoinRoom(sctxB, raw(`{"roomId":"r1","userId":"u2","userName":"Bob"}`)))

	err := s.server.handleApprovalResponse(sctxB, raw(`{"approved":true}`))
	s.Require().ErrorIs(err, wsevent.ErrInvalidPayload)
}

func (s *ServerSuite) TestRequestApprovalEvent() {
	sctxA, _ := s.sessionFor("A")
	s.Require().NoError(s.server.handleJoinRoom(sctxA, raw(`{"roomId":"r1","userId":"u1","userName":"Alice"}`)))
	sctxB, connB := s.sessionFor("B")
	s.Require().NoError(s.server.handleJoinRoom(sctxB, raw(`{"roomId":"r1","userId":"u2","userName":"Bob"}`)))

	s.Require().NoError(s.server.handleRequestApproval(sctxA, raw(`{"note":"let me in"}`)))

	// A joined first, so only B should see the request
	reqs := connB.eventsNamed(EventApprovalRequest)
	s.Require().Len(reqs, 1)
	data := reqs[0].data.(map[string]json.RawMessage)
	s.JSONEq(`"Alice"`, string(data["requesterName"]))
}
