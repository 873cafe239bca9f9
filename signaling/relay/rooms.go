package relay

import (
	"time"

	"github.com/kowshik-thatinati/privacy-calls/signaling"
)

type room struct {
	id             string
	members        map[string]struct{} // connId set
	createdAt      time.Time
	lastActivityAt time.Time
}

// roomDirectory owns room creation and destruction. Rooms are created
// lazily on first join and deleted the moment their member set empties.
// The Relay mutex guards all access.
type roomDirectory struct {
	rooms map[string]*room
}

func newRoomDirectory() *roomDirectory {
	return &roomDirectory{
		rooms: make(map[string]*room),
	}
}

func (d *roomDirectory) get(roomID string) *room {
	return d.rooms[roomID]
}

func (d *roomDirectory) ensureRoom(roomID string, now time.Time) *room {
	rm, ok := d.rooms[roomID]
	if !ok {
		rm = &room{
			id:             roomID,
			members:        make(map[string]struct{}),
			createdAt:      now,
			lastActivityAt: now,
		}
		d.rooms[roomID] = rm
	}
	return rm
}

// addMember refreshes lastActivityAt; relay traffic and leaves do not.
func (d *roomDirectory) addMember(roomID, connID string, now time.Time) {
	rm := d.ensureRoom(roomID, now)
	rm.members[connID] = struct{}{}
	rm.lastActivityAt = now
}

func (d *roomDirectory) removeMember(roomID, connID string) {
	rm, ok := d.rooms[roomID]
	if !ok {
		return
	}
	delete(rm.members, connID)
	if len(rm.members) == 0 {
		delete(d.rooms, roomID)
	}
}

// listOtherMembers resolves the member set through the registry,
// skipping members with no registry entry. Pass an empty exclude id to
// list everyone.
func (d *roomDirectory) listOtherMembers(reg *connRegistry, roomID, excludeConnID string) []signaling.Participant {
	participants := make([]signaling.Participant, 0)

	rm, ok := d.rooms[roomID]
	if !ok {
		return participants
	}
	for connID := range rm.members {
		if connID == excludeConnID {
			continue
		}
		if p := reg.lookup(connID); p != nil {
			participants = append(participants, *p)
		}
	}
	return participants
}

// sweepIdle returns rooms idle beyond the threshold without deleting
// them; the caller evicts members first.
func (d *roomDirectory) sweepIdle(now time.Time, idleThreshold time.Duration) []*room {
	var idle []*room
	for _, rm := range d.rooms {
		if now.Sub(rm.lastActivityAt) > idleThreshold {
			idle = append(idle, rm)
		}
	}
	return idle
}

func (d *roomDirectory) deleteRoom(roomID string) {
	delete(d.rooms, roomID)
}

func (d *roomDirectory) size() int {
	return len(d.rooms)
}

func (d *roomDirectory) clear() {
	d.rooms = make(map[string]*room)
}
