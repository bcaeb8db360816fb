package core

// Relay fans events out to the clients that should see them. The audience
// of a room is always read fresh from the directory at broadcast time, so a
// participant who left between send and delivery receives nothing.
type Relay struct {
	dir     *Directory
	clients map[string]*Client // participant id -> client
}

// NewRelay builds a relay over the directory.
func NewRelay(dir *Directory) *Relay {
	return &Relay{
		dir:     dir,
		clients: make(map[string]*Client),
	}
}

// Attach binds a participant id to its client connection.
func (r *Relay) Attach(participantID string, c *Client) {
	r.clients[participantID] = c
}

// Detach unbinds a participant. Unknown ids are a no-op.
func (r *Relay) Detach(participantID string) {
	delete(r.clients, participantID)
}

// Audience returns the participant ids that currently receive events
// scoped to the room.
func (r *Relay) Audience(roomID string) []string {
	room, ok := r.dir.Get(roomID)
	if !ok {
		return nil
	}
	return room.Members()
}

// Broadcast delivers an event to the room's current member set.
func (r *Relay) Broadcast(roomID string, event *Event) {
	for _, id := range r.Audience(roomID) {
		r.Send(id, event)
	}
}

// Send delivers an event to a single participant if connected.
func (r *Relay) Send(participantID string, event *Event) {
	c, ok := r.clients[participantID]
	if !ok {
		return
	}
	select {
	case c.Events <- event:
	default:
		// Drop if slow consumer.
	}
}
