package core

import "time"

// EventKind is a notification the coordinator emits to clients.
type EventKind int

const (
	// EventConnected confirms registration and carries the assigned participant.
	EventConnected EventKind = iota
	// EventPresence carries the full online set after someone connects or leaves.
	EventPresence
	// EventRoomCreated announces a new room.
	EventRoomCreated
	// EventRoomClosed announces a room's removal and the redirect target.
	EventRoomClosed
	// EventRoomWarning warns a low-activity room about its upcoming closure.
	EventRoomWarning
	// EventMessage delivers a chat message to room members.
	EventMessage
	// EventHistory replays recent room messages to a client upon joining.
	EventHistory
	// EventUserJoined notifies room members about a new member.
	EventUserJoined
	// EventUserLeft notifies room members that a member left.
	EventUserLeft
	// EventUserBanned notifies a room that a member was banned and removed.
	EventUserBanned
	// EventInvited notifies a participant of a pending private-room invite.
	EventInvited
	// EventTyping relays a typing indicator change.
	EventTyping
	// EventError notifies a client about a domain error.
	EventError
)

// RoomInfo is an immutable snapshot of a room for event payloads.
type RoomInfo struct {
	ID      string
	Name    string
	Private bool
	OwnerID string
	Members []string
}

// Snapshot captures the room's current shape.
func (r *Room) Snapshot() *RoomInfo {
	return &RoomInfo{
		ID:      r.ID,
		Name:    r.Name,
		Private: r.Private,
		OwnerID: r.OwnerID,
		Members: r.Members(),
	}
}

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind      EventKind
	Room      string
	User      string // participant id the event is about
	Username  string
	Reason    string
	Redirect  string        // room id clients should switch to after a closure
	Remaining time.Duration // time left before closure, for warnings
	Typing    bool
	Message   Message
	Messages  []Message // for EventHistory
	RoomInfo  *RoomInfo
	Self      *Participant  // for EventConnected
	Online    []Participant // presence snapshot
	Error     *CoreError
}
