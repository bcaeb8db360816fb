package core

import (
	"github.com/benbjohnson/clock"

	"github.com/salonlabs/salon-server/internal/utils"
)

// Directory owns every room together with its membership, invites and bans.
// All validation happens before any mutation, and the directory is only ever
// touched from the hub goroutine, so each operation is atomic to its callers.
type Directory struct {
	rooms      map[string]*Room
	order      []string // room ids in creation order
	maxMembers int
	clk        clock.Clock
}

// NewDirectory builds a directory seeded with the system rooms.
func NewDirectory(clk clock.Clock, maxMembers int) *Directory {
	d := &Directory{
		rooms:      make(map[string]*Room),
		maxMembers: maxMembers,
		clk:        clk,
	}
	d.addRoom(NewRoom(GeneralRoomID, "General", SystemOwner, false, clk.Now()))
	d.addRoom(NewRoom(RandomRoomID, "Random", SystemOwner, false, clk.Now()))
	return d
}

func (d *Directory) addRoom(r *Room) {
	d.rooms[r.ID] = r
	d.order = append(d.order, r.ID)
}

// Get returns a room by id.
func (d *Directory) Get(roomID string) (*Room, bool) {
	r, ok := d.rooms[roomID]
	return r, ok
}

// General returns the default room every participant belongs to.
func (d *Directory) General() *Room {
	return d.rooms[GeneralRoomID]
}

// List returns rooms in creation order.
func (d *Directory) List() []*Room {
	out := make([]*Room, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, d.rooms[id])
	}
	return out
}

// Create makes a new room owned by ownerID. Public rooms start with the seed
// population (the general room's members); private rooms start with just the
// owner. Fails before mutating anything if the initial member set would
// exceed the capacity limit.
func (d *Directory) Create(ownerID, name string, private bool, seed []string) (*Room, error) {
	initial := []string{ownerID}
	if !private {
		initial = initial[:0]
		for _, id := range seed {
			initial = append(initial, id)
		}
		found := false
		for _, id := range initial {
			if id == ownerID {
				found = true
				break
			}
		}
		if !found {
			initial = append(initial, ownerID)
		}
	}
	if len(initial) > d.maxMembers {
		return nil, ErrCapacityExceeded
	}

	room := NewRoom(utils.NewID(), name, ownerID, private, d.clk.Now())
	for _, id := range initial {
		room.AddMember(id)
	}
	d.addRoom(room)
	return room, nil
}

// Join adds the participant to the room's members. Joining a room you
// already belong to is absorbed as a no-op. Consumes a pending invite.
func (d *Directory) Join(participantID, roomID string) (*Room, error) {
	room, ok := d.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	if room.IsBanned(participantID) {
		return nil, ErrBanned
	}
	if room.HasMember(participantID) {
		room.Touch(d.clk.Now())
		return room, nil
	}
	if room.MemberCount() >= d.maxMembers {
		return nil, ErrCapacityExceeded
	}
	room.AddMember(participantID)
	room.Touch(d.clk.Now())
	return room, nil
}

// Leave removes the participant from the room's members.
func (d *Directory) Leave(participantID, roomID string) (*Room, error) {
	room, ok := d.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	if !room.RemoveMember(participantID) {
		return nil, ErrNotInRoom
	}
	return room, nil
}

// Invite records a pending invite. Only the owner of a private room may
// invite; targets that are already members, already invited or banned are
// silently absorbed.
func (d *Directory) Invite(requesterID, roomID, targetID string) (*Room, bool, error) {
	room, ok := d.rooms[roomID]
	if !ok {
		return nil, false, ErrRoomNotFound
	}
	if !room.Private || room.OwnerID != requesterID {
		return nil, false, ErrForbidden
	}
	return room, room.AddInvite(targetID), nil
}

// Close removes a room. Only the owner of a private room may close it;
// system rooms can never be closed. Returns the removed room so the caller
// can redirect its members.
func (d *Directory) Close(requesterID, roomID string) (*Room, error) {
	room, ok := d.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	if room.IsSystem() || !room.Private || room.OwnerID != requesterID {
		return nil, ErrForbidden
	}
	d.remove(roomID)
	return room, nil
}

// Touch records activity in a room (message, join, invite).
func (d *Directory) Touch(roomID string) {
	if room, ok := d.rooms[roomID]; ok {
		room.Touch(d.clk.Now())
	}
}

// RemoveEverywhere drops the participant from every room's member list,
// returning the rooms that actually changed. Used for disconnect teardown;
// it is idempotent against already-cleaned-up state.
func (d *Directory) RemoveEverywhere(participantID string) []*Room {
	var affected []*Room
	for _, id := range d.order {
		if d.rooms[id].RemoveMember(participantID) {
			affected = append(affected, d.rooms[id])
		}
	}
	return affected
}

// BanEverywhere adds the participant to the banned set of every room it
// currently belongs to and removes it from those member lists. Rooms the
// participant is not in keep independent ban state.
func (d *Directory) BanEverywhere(participantID string) []*Room {
	var affected []*Room
	for _, id := range d.order {
		room := d.rooms[id]
		if room.HasMember(participantID) {
			room.Ban(participantID)
			affected = append(affected, room)
		}
	}
	return affected
}

// remove deletes a room from the directory.
func (d *Directory) remove(roomID string) {
	delete(d.rooms, roomID)
	for i, id := range d.order {
		if id == roomID {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
}
