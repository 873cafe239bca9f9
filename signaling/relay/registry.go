package relay

import "github.com/kowshik-thatinati/privacy-calls/signaling"

// connRegistry maps each joined connection to its participant identity.
// A missing entry means "not joined", never an error. Not safe for
// concurrent use on its own; the Relay mutex guards it.
type connRegistry struct {
	participants map[string]*signaling.Participant
}

func newConnRegistry() *connRegistry {
	return &connRegistry{
		participants: make(map[string]*signaling.Participant),
	}
}

func (r *connRegistry) register(connID string, p *signaling.Participant) {
	r.participants[connID] = p
}

// lookup returns nil for unknown connection ids.
func (r *connRegistry) lookup(connID string) *signaling.Participant {
	return r.participants[connID]
}

func (r *connRegistry) remove(connID string) {
	delete(r.participants, connID)
}

func (r *connRegistry) size() int {
	return len(r.participants)
}

func (r *connRegistry) clear() {
	r.participants = make(map[string]*signaling.Participant)
}
