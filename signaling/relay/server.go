package relay

import (
	"encoding/json"

	"github.com/kowshik-thatinati/privacy-calls/internal/log"
	"github.com/kowshik-thatinati/privacy-calls/internal/wsevent"
)

// Server binds the inbound event surface to the relay operations.
type Server struct {
	wsevent.Handler[Session]
	relay  *Relay
	logger *log.Logger
}

func NewServer(
	handler wsevent.Handler[Session],
	relay *Relay,
	logger *log.Logger,
) *Server {
	return &Server{
		Handler: handler,
		relay:   relay,
		logger:  logger,
	}
}

func (s *Server) Open() {
	s.register()
}

func (s *Server) register() {
	// handlers run in each connection's read loop, one event at a time
	s.On(EventJoinRoom, s.handleJoinRoom)
	s.On(EventLeaveRoom, s.handleLeaveRoom)
	s.On(EventOffer, s.forward(EventOffer))
	s.On(EventAnswer, s.forward(EventAnswer))
	s.On(EventICECandidate, s.forward(EventICECandidate))
	s.On(EventRequestApproval, s.handleRequestApproval)
	s.On(EventApprovalResponse, s.handleApprovalResponse)
}

func (s *Server) handleJoinRoom(sctx wsevent.SessionContext[Session], data *json.RawMessage) error {
	var req struct {
		RoomID   string `json:"roomId" validate:"required,roomid"`
		UserID   string `json:"userId" validate:"required,max=64"`
		UserName string `json:"userName" validate:"required,username"`
	}
	if err := wsevent.Bind(data, &req); err != nil {
		return err
	}

	sess := sctx.Get()
	s.relay.Join(sess.reqCtx, sess.connID, req.RoomID, req.UserID, req.UserName)
	return nil
}

func (s *Server) handleLeaveRoom(sctx wsevent.SessionContext[Session], _ *json.RawMessage) error {
	sess := sctx.Get()
	s.relay.Leave(sess.reqCtx, sess.connID)
	return nil
}

// forward passes the handshake payload through untouched; malformed or
// out-of-order traffic is tolerated silently.
func (s *Server) forward(event string) wsevent.EventHandler[Session] {
	return func(sctx wsevent.SessionContext[Session], data *json.RawMessage) error {
		sess := sctx.Get()
		var payload json.RawMessage
		if data != nil {
			payload = *data
		}
		s.relay.Forward(sess.reqCtx, sess.connID, event, payload)
		return nil
	}
}

func (s *Server) handleRequestApproval(sctx wsevent.SessionContext[Session], data *json.RawMessage) error {
	sess := sctx.Get()
	var payload json.RawMessage
	if data != nil {
		payload = *data
	}
	s.relay.RequestApproval(sess.reqCtx, sess.connID, payload)
	return nil
}

func (s *Server) handleApprovalResponse(sctx wsevent.SessionContext[Session], data *json.RawMessage) error {
	var req struct {
		Approved    bool   `json:"approved"`
		RequesterID string `json:"requesterId" validate:"required"`
	}
	if err := wsevent.Bind(data, &req); err != nil {
		return err
	}

	sess := sctx.Get()
	s.relay.RespondApproval(sess.reqCtx, sess.connID, req.Approved, req.RequesterID)
	return nil
}
