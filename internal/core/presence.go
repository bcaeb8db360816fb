package core

import (
	"github.com/salonlabs/salon-server/internal/utils"
)

// Presence tracks which connections are live and who they are.
// It is owned by the hub goroutine and is not safe for concurrent use.
type Presence struct {
	byConn map[string]*Participant
	byID   map[string]*Participant
	order  []string // connection ids in registration order
}

// NewPresence builds an empty presence registry.
func NewPresence() *Presence {
	return &Presence{
		byConn: make(map[string]*Participant),
		byID:   make(map[string]*Participant),
	}
}

// Register creates a participant for the connection and returns it.
// A connection may only register once.
func (p *Presence) Register(connID string, profile Profile) (*Participant, error) {
	if _, exists := p.byConn[connID]; exists {
		return nil, ErrDuplicateConnection
	}
	participant := &Participant{
		ID:      utils.NewID(),
		Profile: profile,
		Online:  true,
	}
	p.byConn[connID] = participant
	p.byID[participant.ID] = participant
	p.order = append(p.order, connID)
	return participant, nil
}

// Unregister removes the connection's participant. Unknown connections are
// a no-op so disconnect races never fail.
func (p *Presence) Unregister(connID string) (*Participant, bool) {
	participant, ok := p.byConn[connID]
	if !ok {
		return nil, false
	}
	delete(p.byConn, connID)
	delete(p.byID, participant.ID)
	for i, id := range p.order {
		if id == connID {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
	participant.Online = false
	return participant, true
}

// Get returns the participant for a connection.
func (p *Presence) Get(connID string) (*Participant, bool) {
	participant, ok := p.byConn[connID]
	return participant, ok
}

// GetByID returns a participant by its opaque id.
func (p *Presence) GetByID(participantID string) (*Participant, bool) {
	participant, ok := p.byID[participantID]
	return participant, ok
}

// ListOnline returns connected participants in registration order.
func (p *Presence) ListOnline() []*Participant {
	out := make([]*Participant, 0, len(p.order))
	for _, connID := range p.order {
		out = append(out, p.byConn[connID])
	}
	return out
}
