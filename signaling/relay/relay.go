package relay

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/kowshik-thatinati/privacy-calls/internal/log"
	"github.com/kowshik-thatinati/privacy-calls/internal/turncred"
	"github.com/kowshik-thatinati/privacy-calls/signaling"
)

// Outbound events.
const (
	EventTurnCredentials  = "turn-credentials"
	EventUserJoined       = "user-joined"
	EventRoomParticipants = "room-participants"
	EventUserLeft         = "user-left"
	EventRoomExpired      = "room-expired"
	EventRoomFull         = "room-full"
	EventApprovalRequest  = "approval-request"
	EventApprovalGranted  = "approval-granted"
	EventApprovalDenied   = "approval-denied"
)

// Inbound events.
const (
	EventJoinRoom         = "join-room"
	EventLeaveRoom        = "leave-room"
	EventOffer            = "webrtc-offer"
	EventAnswer           = "webrtc-answer"
	EventICECandidate     = "webrtc-ice-candidate"
	EventRequestApproval  = "request-approval"
	EventApprovalResponse = "approval-response"
)

// Relay is the signaling protocol core: the room/participant directory
// plus the join/leave/forward/approval state machine. One mutex guards
// every operation, so effects within a room are observed in the order
// events were accepted. Outbound sends are buffered fire-and-forget
// writes and are safe to issue under the lock.
type Relay struct {
	mu       sync.Mutex
	registry *connRegistry
	rooms    *roomDirectory
	conns    map[string]signaling.Conn // all live connections, joined or not

	config *Config
	creds  *turncred.Credentials
	clock  clockwork.Clock
	logger *log.Logger
}

func NewRelay(
	config *Config,
	creds *turncred.Credentials,
	clock clockwork.Clock,
	logger *log.Logger,
) *Relay {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Relay{
		registry: newConnRegistry(),
		rooms:    newRoomDirectory(),
		conns:    make(map[string]signaling.Conn),
		config:   config,
		creds:    creds,
		clock:    clock,
		logger:   logger,
	}
}

// Connect registers a live transport connection and pushes the process
// credentials to it.
func (r *Relay) Connect(ctx context.Context, connID string, conn signaling.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.conns[connID] = conn
	connectionsTotal.Add(ctx, 1)
	connectionsActive.Add(ctx, 1)

	if r.creds != nil {
		r.sendLocked(ctx, connID, EventTurnCredentials, r.creds)
	}
}

// Disconnect tears down whatever membership the connection held. The
// transport invokes this for every connection exactly once.
func (r *Relay) Disconnect(ctx context.Context, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[connID]; !ok {
		return
	}
	r.leaveLocked(ctx, connID)
	delete(r.conns, connID)
	connectionsActive.Add(ctx, -1)
}

// Join puts the connection into roomID, announcing it to the current
// members and returning the membership snapshot to the joiner. A
// connection already in a room leaves it first.
func (r *Relay) Join(ctx context.Context, connID, roomID, userID, userName string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p := r.registry.lookup(connID); p != nil {
		r.logger.Debug("rejoin, leaving prior room",
			log.String("connId", connID),
			log.String("prevRoomId", p.RoomID))
		r.leaveLocked(ctx, connID)
	}

	if rm := r.rooms.get(roomID); rm != nil &&
		r.config.RoomCapacity > 0 && len(rm.members) >= r.config.RoomCapacity {
		r.sendLocked(ctx, connID, EventRoomFull, map[string]string{
			"roomId": roomID,
		})
		joinsRejected.Add(ctx, 1)
		return
	}

	// snapshot before this connection counts toward "other"
	others := r.rooms.listOtherMembers(r.registry, roomID, connID)

	now := r.clock.Now()
	freshRoom := r.rooms.get(roomID) == nil
	r.rooms.addMember(roomID, connID, now)
	r.registry.register(connID, &signaling.Participant{
		ConnectionID: connID,
		UserID:       userID,
		UserName:     userName,
		RoomID:       roomID,
	})
	if freshRoom {
		roomsActive.Add(ctx, 1)
	}

	r.broadcastLocked(ctx, roomID, connID, EventUserJoined, map[string]string{
		"userId":       userID,
		"userName":     userName,
		"connectionId": connID,
	})
	r.sendLocked(ctx, connID, EventRoomParticipants, others)
	joinsTotal.Add(ctx, 1)

	r.logger.Info("participant joined",
		log.String("connId", connID),
		log.String("roomId", roomID),
		log.String("userId", userID))
}

// Leave is idempotent; leaving while not joined is a no-op.
func (r *Relay) Leave(ctx context.Context, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(ctx, connID)
}

func (r *Relay) leaveLocked(ctx context.Context, connID string) {
	p := r.registry.lookup(connID)
	if p == nil {
		return
	}

	r.rooms.removeMember(p.RoomID, connID)
	if r.rooms.get(p.RoomID) == nil {
		roomsActive.Add(ctx, -1)
	}
	r.broadcastLocked(ctx, p.RoomID, connID, EventUserLeft, map[string]string{
		"connectionId": connID,
		"userId":       p.UserID,
	})
	r.registry.remove(connID)
	leavesTotal.Add(ctx, 1)

	r.logger.Info("participant left",
		log.String("connId", connID),
		log.String("roomId", p.RoomID))
}

// Forward echoes an opaque handshake payload to every other member of
// the sender's room under the same event name, with the sender's id
// attached. Not joined means silent no-op.
func (r *Relay) Forward(ctx context.Context, connID, event string, payload json.RawMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.registry.lookup(connID)
	if p == nil {
		return
	}

	data, ok := r.mergePayload(connID, payload, "fromConnection")
	if !ok {
		return
	}
	r.broadcastLocked(ctx, p.RoomID, connID, event, data)
	forwardsTotal.Add(ctx, 1)
}

// RequestApproval broadcasts the payload to the sender's room members
// with the requester's id and display name attached.
func (r *Relay) RequestApproval(ctx context.Context, connID string, payload json.RawMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.registry.lookup(connID)
	if p == nil {
		return
	}

	data, ok := r.mergePayload(connID, payload, "requesterId")
	if !ok {
		return
	}
	name, err := json.Marshal(p.UserName)
	if err != nil {
		return
	}
	data["requesterName"] = name

	r.broadcastLocked(ctx, p.RoomID, connID, EventApprovalRequest, data)
	approvalRequests.Add(ctx, 1)
}

// RespondApproval routes the verdict directly to requesterID, which may
// be any live connection; the relay does not track pending requests, so
// an unknown requester is a silent no-op.
func (r *Relay) RespondApproval(ctx context.Context, connID string, approved bool, requesterID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.registry.lookup(connID)
	if p == nil {
		return
	}
	if _, ok := r.conns[requesterID]; !ok {
		return
	}

	if approved {
		r.sendLocked(ctx, requesterID, EventApprovalGranted, map[string]string{
			"approverId":   connID,
			"approverName": p.UserName,
		})
	} else {
		r.sendLocked(ctx, requesterID, EventApprovalDenied, map[string]string{
			"deniedBy": connID,
		})
	}
	approvalResponses.Add(ctx, 1)
}

// Status reports one room for the HTTP API; false when the room does
// not exist (never created, emptied, or reaped).
func (r *Relay) Status(roomID string) (*signaling.RoomStatus, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm := r.rooms.get(roomID)
	if rm == nil {
		return nil, false
	}
	return &signaling.RoomStatus{
		RoomID:       roomID,
		MemberCount:  len(rm.members),
		Participants: r.rooms.listOtherMembers(r.registry, roomID, ""),
		CreatedAt:    rm.createdAt,
	}, true
}

// ExpireIdleRooms evicts every room idle beyond the threshold: notify
// the members, force-close their connections, then drop the room. The
// registry drains through the normal disconnect path.
func (r *Relay) ExpireIdleRooms(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	for _, rm := range r.rooms.sweepIdle(now, r.config.IdleThreshold) {
		r.logger.Info("expiring idle room",
			log.String("roomId", rm.id),
			log.Int("members", len(rm.members)),
			log.Time("lastActivityAt", rm.lastActivityAt))

		for connID := range rm.members {
			r.sendLocked(ctx, connID, EventRoomExpired, map[string]string{
				"roomId": rm.id,
			})
		}
		for connID := range rm.members {
			if conn, ok := r.conns[connID]; ok {
				_ = conn.Close()
			}
		}
		r.rooms.deleteRoom(rm.id)
		roomsActive.Add(ctx, -1)
		roomsExpired.Add(ctx, 1)
	}
}

// Shutdown drops all state and force-closes every live connection with
// no notification. Best effort, not graceful.
func (r *Relay) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logger.Info("dropping all relay state",
		log.Int("connections", len(r.conns)),
		log.Int("rooms", r.rooms.size()),
		log.Int("participants", r.registry.size()))

	for _, conn := range r.conns {
		_ = conn.Close()
	}
	r.conns = make(map[string]signaling.Conn)
	r.registry.clear()
	r.rooms.clear()
}

// mergePayload decodes an opaque object payload and attaches the sender
// id under idKey. Payload contents are otherwise untouched.
func (r *Relay) mergePayload(connID string, payload json.RawMessage, idKey string) (map[string]json.RawMessage, bool) {
	data := make(map[string]json.RawMessage)
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &data); err != nil {
			r.logger.Warn("non-object payload dropped",
				log.String("connId", connID),
				log.Error(err))
			return nil, false
		}
	}
	id, err := json.Marshal(connID)
	if err != nil {
		return nil, false
	}
	data[idKey] = id
	return data, true
}

func (r *Relay) sendLocked(ctx context.Context, connID, event string, data interface{}) {
	conn, ok := r.conns[connID]
	if !ok {
		return
	}
	// the triggering event's context may already be canceled (sender
	// disconnect); delivery to other members must not inherit that
	if err := conn.Send(context.WithoutCancel(ctx), event, data); err != nil {
		sendsFailed.Add(ctx, 1)
		r.logger.Debug("send failed",
			log.String("connId", connID),
			log.String("event", event),
			log.Error(err))
	}
}

func (r *Relay) broadcastLocked(ctx context.Context, roomID, exceptConnID, event string, data interface{}) {
	rm := r.rooms.get(roomID)
	if rm == nil {
		return
	}
	for connID := range rm.members {
		if connID == exceptConnID {
			continue
		}
		r.sendLocked(ctx, connID, event, data)
	}
}
