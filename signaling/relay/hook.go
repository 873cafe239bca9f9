package relay

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/kowshik-thatinati/privacy-calls/internal/log"
	"github.com/kowshik-thatinati/privacy-calls/internal/wsevent"
)

// NewWSHook ties the transport connection lifecycle to the relay:
// connect registers the connection and pushes credentials, disconnect
// runs the leave path.
func NewWSHook(relay *Relay, logger *log.Logger) wsevent.ConnectionHooks[Session] {
	return &wsHookImpl{
		relay:  relay,
		logger: logger,
	}
}

type wsHookImpl struct {
	relay  *Relay
	logger *log.Logger
}

// OnVerify accepts everyone; participant identity is caller-asserted
// and never authenticated.
func (h *wsHookImpl) OnVerify(r *http.Request) (*Session, bool, error) {
	return &Session{reqCtx: r.Context()}, true, nil
}

func (h *wsHookImpl) OnConnect(sctx wsevent.SessionContext[Session]) {
	sess := sctx.Get()
	sess.connID = uuid.New().String()

	h.relay.Connect(sess.reqCtx, sess.connID, sctx.Peer())
	h.logger.Info("client connected", log.String("connId", sess.connID))
}

func (h *wsHookImpl) OnDisconnect(sctx wsevent.SessionContext[Session]) {
	sess := sctx.Get()
	h.relay.Disconnect(sess.reqCtx, sess.connID)
	h.logger.Info("client disconnected", log.String("connId", sess.connID))
}
