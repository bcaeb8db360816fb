package core

import "time"

// SystemOwner marks rooms owned by the server itself. System rooms are
// public, cannot be closed and are exempt from the activity sweep.
const SystemOwner = "system"

// Default room ids created at startup.
const (
	GeneralRoomID = "general"
	RandomRoomID  = "random"
)

// Room is a named scope for messages and membership.
type Room struct {
	ID           string
	Name         string
	Private      bool
	OwnerID      string
	LastActivity time.Time

	members   []string // insertion order, for display
	memberSet map[string]struct{}
	invited   map[string]struct{}
	banned    map[string]struct{}

	// warned guards the at-most-once low-activity warning per Warned entry.
	warned bool
}

// NewRoom constructs an empty room.
func NewRoom(id, name, ownerID string, private bool, now time.Time) *Room {
	return &Room{
		ID:           id,
		Name:         name,
		Private:      private,
		OwnerID:      ownerID,
		LastActivity: now,
		memberSet:    make(map[string]struct{}),
		invited:      make(map[string]struct{}),
		banned:       make(map[string]struct{}),
	}
}

// IsSystem reports whether the room is server-owned.
func (r *Room) IsSystem() bool {
	return r.OwnerID == SystemOwner
}

// HasMember reports whether the participant belongs to the room.
func (r *Room) HasMember(participantID string) bool {
	_, ok := r.memberSet[participantID]
	return ok
}

// AddMember inserts a participant. Returns false if already present.
// Callers must have cleared the banned and capacity checks first.
func (r *Room) AddMember(participantID string) bool {
	if r.HasMember(participantID) {
		return false
	}
	r.memberSet[participantID] = struct{}{}
	r.members = append(r.members, participantID)
	delete(r.invited, participantID)
	return true
}

// RemoveMember deletes a participant. Returns false if absent.
func (r *Room) RemoveMember(participantID string) bool {
	if !r.HasMember(participantID) {
		return false
	}
	delete(r.memberSet, participantID)
	for i, id := range r.members {
		if id == participantID {
			r.members = append(r.members[:i], r.members[i+1:]...)
			break
		}
	}
	return true
}

// Members returns member ids in insertion order.
func (r *Room) Members() []string {
	out := make([]string, len(r.members))
	copy(out, r.members)
	return out
}

// MemberCount returns the current member count.
func (r *Room) MemberCount() int {
	return len(r.members)
}

// IsInvited reports whether the participant has a pending invite.
func (r *Room) IsInvited(participantID string) bool {
	_, ok := r.invited[participantID]
	return ok
}

// AddInvite records a pending invite. Banned participants cannot be invited.
func (r *Room) AddInvite(participantID string) bool {
	if r.HasMember(participantID) || r.IsInvited(participantID) || r.IsBanned(participantID) {
		return false
	}
	r.invited[participantID] = struct{}{}
	return true
}

// IsBanned reports whether the participant is excluded from the room.
func (r *Room) IsBanned(participantID string) bool {
	_, ok := r.banned[participantID]
	return ok
}

// Ban adds the participant to the banned set, removing any membership or
// pending invite so members and banned never intersect.
// Returns true if the participant was a member at the time.
func (r *Room) Ban(participantID string) bool {
	wasMember := r.RemoveMember(participantID)
	delete(r.invited, participantID)
	r.banned[participantID] = struct{}{}
	return wasMember
}

// Touch resets the activity clock. Any activity returns a warned room to the
// Active state, re-arming the warning for a later low-activity period.
func (r *Room) Touch(now time.Time) {
	r.LastActivity = now
	r.warned = false
}
