package core

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
)

func startHub(t *testing.T, clk clock.Clock) (*Hub, context.CancelFunc) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(DefaultLimits(), clk, nil, nil)
	go hub.Run(ctx)
	return hub, cancel
}

// connectClient registers a connection, sends hello and returns the client
// with its assigned participant id.
func connectClient(t *testing.T, hub *Hub, connID, username string) (*Client, string) {
	t.Helper()
	c := NewClient(connID)
	hub.RegisterClient(c)
	c.Commands <- &Command{Kind: CommandConnect, Profile: Profile{Username: username}}
	ev := mustEvent(t, c.Events, EventConnected)
	if ev.Self == nil || ev.Self.ID == "" {
		t.Fatalf("expected connected event with participant, got %+v", ev)
	}
	return c, ev.Self.ID
}

// mustRoomEvent waits for an event of the given kind scoped to the room.
func mustRoomEvent(t *testing.T, ch <-chan *Event, kind EventKind, roomID string) *Event {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		ev := mustEvent(t, ch, kind)
		if ev.Room == roomID {
			return ev
		}
	}
	t.Fatalf("expected event kind %v for room %q not received", kind, roomID)
	return nil
}

func TestHubConnectBroadcastsPresenceToGeneral(t *testing.T) {
	hub, cancel := startHub(t, nil)
	defer cancel()

	alice, aliceID := connectClient(t, hub, "c-alice", "alice")
	_, bobID := connectClient(t, hub, "c-bob", "bob")

	// Alice sees the presence rebroadcast when bob connects.
	deadline := time.Now().Add(2 * time.Second)
	for {
		if time.Now().After(deadline) {
			t.Fatal("never saw bob in the online set")
		}
		ev := mustEvent(t, alice.Events, EventPresence)
		if ev.User != bobID {
			continue
		}
		ids := make(map[string]bool, len(ev.Online))
		for _, p := range ev.Online {
			ids[p.ID] = true
		}
		if !ids[aliceID] || !ids[bobID] {
			t.Fatalf("expected both participants online, got %+v", ev.Online)
		}
		break
	}
}

func TestHubDuplicateHelloProducesError(t *testing.T) {
	hub, cancel := startHub(t, nil)
	defer cancel()

	alice, _ := connectClient(t, hub, "c-alice", "alice")
	alice.Commands <- &Command{Kind: CommandConnect, Profile: Profile{Username: "alice2"}}

	ev := mustEvent(t, alice.Events, EventError)
	if ev.Error == nil || ev.Error.Code != ErrCodeDuplicateConnection {
		t.Fatalf("expected duplicate_connection error, got %+v", ev)
	}
}

func TestHubCommandBeforeHelloProducesError(t *testing.T) {
	hub, cancel := startHub(t, nil)
	defer cancel()

	c := NewClient("c-early")
	hub.RegisterClient(c)
	c.Commands <- &Command{Kind: CommandSendMessage, Room: GeneralRoomID, Message: Message{Content: "hi"}}

	ev := mustEvent(t, c.Events, EventError)
	if ev.Error == nil || ev.Error.Code != ErrCodeBadRequest {
		t.Fatalf("expected bad_request error, got %+v", ev)
	}
}

func TestHubMessageBroadcastAndLeave(t *testing.T) {
	hub, cancel := startHub(t, nil)
	defer cancel()

	alice, aliceID := connectClient(t, hub, "c-alice", "alice")
	bob, bobID := connectClient(t, hub, "c-bob", "bob")

	alice.Commands <- &Command{
		Kind:    CommandSendMessage,
		Room:    GeneralRoomID,
		Message: Message{Content: "hi"},
	}
	msgEv := mustEvent(t, bob.Events, EventMessage)
	if msgEv.Message.Content != "hi" || msgEv.Message.SenderID != aliceID || msgEv.Message.Sender != "alice" {
		t.Fatalf("unexpected message event: %+v", msgEv.Message)
	}
	if msgEv.Message.Type != MessageText {
		t.Fatalf("expected text type default, got %q", msgEv.Message.Type)
	}

	bob.Commands <- &Command{Kind: CommandLeaveRoom, Room: GeneralRoomID}
	leftEv := mustRoomEvent(t, alice.Events, EventUserLeft, GeneralRoomID)
	if leftEv.User != bobID {
		t.Fatalf("unexpected leave event: %+v", leftEv)
	}

	// Bob is out of the audience now: he must not receive further messages.
	alice.Commands <- &Command{
		Kind:    CommandSendMessage,
		Room:    GeneralRoomID,
		Message: Message{Content: "gone?"},
	}
	settle()
	for {
		select {
		case ev := <-bob.Events:
			if ev.Kind == EventMessage && ev.Message.Content == "gone?" {
				t.Fatal("participant who left still received a room message")
			}
			continue
		default:
		}
		break
	}
}

func TestHubSendToUnknownRoom(t *testing.T) {
	hub, cancel := startHub(t, nil)
	defer cancel()

	alice, _ := connectClient(t, hub, "c-alice", "alice")
	alice.Commands <- &Command{Kind: CommandSendMessage, Room: "ghost", Message: Message{Content: "hi"}}

	ev := mustEvent(t, alice.Events, EventError)
	if ev.Error == nil || ev.Error.Code != ErrCodeRoomNotFound {
		t.Fatalf("expected room_not_found, got %+v", ev)
	}
}

func TestHubSendWithoutMembership(t *testing.T) {
	hub, cancel := startHub(t, nil)
	defer cancel()

	alice, _ := connectClient(t, hub, "c-alice", "alice")
	bob, _ := connectClient(t, hub, "c-bob", "bob")

	alice.Commands <- &Command{Kind: CommandCreateRoom, Name: "Hideout", Private: true}
	created := mustEvent(t, alice.Events, EventRoomCreated)

	bob.Commands <- &Command{Kind: CommandSendMessage, Room: created.Room, Message: Message{Content: "hi"}}
	ev := mustEvent(t, bob.Events, EventError)
	if ev.Error == nil || ev.Error.Code != ErrCodeNotInRoom {
		t.Fatalf("expected not_in_room, got %+v", ev)
	}
}

func TestHubInviteFlow(t *testing.T) {
	hub, cancel := startHub(t, nil)
	defer cancel()

	alice, aliceID := connectClient(t, hub, "c-alice", "alice")
	bob, bobID := connectClient(t, hub, "c-bob", "bob")

	alice.Commands <- &Command{Kind: CommandCreateRoom, Name: "Test", Private: true}
	created := mustEvent(t, alice.Events, EventRoomCreated)
	roomID := created.Room

	alice.Commands <- &Command{Kind: CommandInvite, Room: roomID, Target: bobID}
	inv := mustEvent(t, bob.Events, EventInvited)
	if inv.Room != roomID || inv.User != aliceID {
		t.Fatalf("unexpected invite event: %+v", inv)
	}

	// Accepting an invite is just joining the room.
	bob.Commands <- &Command{Kind: CommandJoinRoom, Room: roomID}
	joined := mustRoomEvent(t, alice.Events, EventUserJoined, roomID)
	if joined.User != bobID {
		t.Fatalf("unexpected join event: %+v", joined)
	}

	// Only the owner may invite into a private room.
	bob.Commands <- &Command{Kind: CommandInvite, Room: roomID, Target: aliceID}
	ev := mustEvent(t, bob.Events, EventError)
	if ev.Error == nil || ev.Error.Code != ErrCodeForbidden {
		t.Fatalf("expected forbidden, got %+v", ev)
	}
}

func TestHubCloseRoomRedirectsMembers(t *testing.T) {
	hub, cancel := startHub(t, nil)
	defer cancel()

	alice, _ := connectClient(t, hub, "c-alice", "alice")
	bob, _ := connectClient(t, hub, "c-bob", "bob")

	alice.Commands <- &Command{Kind: CommandCreateRoom, Name: "Test", Private: true}
	created := mustEvent(t, alice.Events, EventRoomCreated)
	roomID := created.Room

	bob.Commands <- &Command{Kind: CommandJoinRoom, Room: roomID}
	mustRoomEvent(t, alice.Events, EventUserJoined, roomID)

	// Non-owner close is forbidden.
	bob.Commands <- &Command{Kind: CommandCloseRoom, Room: roomID}
	ev := mustEvent(t, bob.Events, EventError)
	if ev.Error == nil || ev.Error.Code != ErrCodeForbidden {
		t.Fatalf("expected forbidden, got %+v", ev)
	}

	// System rooms can never be closed.
	alice.Commands <- &Command{Kind: CommandCloseRoom, Room: GeneralRoomID}
	ev = mustEvent(t, alice.Events, EventError)
	if ev.Error == nil || ev.Error.Code != ErrCodeForbidden {
		t.Fatalf("expected forbidden for system room, got %+v", ev)
	}

	alice.Commands <- &Command{Kind: CommandCloseRoom, Room: roomID}
	closedEv := mustRoomEvent(t, bob.Events, EventRoomClosed, roomID)
	if closedEv.Redirect != GeneralRoomID {
		t.Fatalf("expected redirect to general, got %q", closedEv.Redirect)
	}

	rooms, err := hub.Rooms(context.Background())
	if err != nil {
		t.Fatalf("rooms query: %v", err)
	}
	for _, r := range rooms {
		if r.ID == roomID {
			t.Fatal("closed room still listed")
		}
	}
}

func TestHubThreeReportsBanEverywhereExactlyOnce(t *testing.T) {
	hub, cancel := startHub(t, nil)
	defer cancel()

	alice, _ := connectClient(t, hub, "c-alice", "alice")
	bob, bobID := connectClient(t, hub, "c-bob", "bob")
	carol, _ := connectClient(t, hub, "c-carol", "carol")
	dave, _ := connectClient(t, hub, "c-dave", "dave")
	erin, _ := connectClient(t, hub, "c-erin", "erin")

	alice.Commands <- &Command{Kind: CommandCreateRoom, Name: "Test", Private: true}
	created := mustEvent(t, alice.Events, EventRoomCreated)
	roomID := created.Room

	bob.Commands <- &Command{Kind: CommandJoinRoom, Room: roomID}
	mustRoomEvent(t, alice.Events, EventUserJoined, roomID)

	reasons := []string{"Spam", "Harcèlement", "Autre"}
	reporters := []*Client{carol, dave, erin}
	for i, reporter := range reporters {
		reporter.Commands <- &Command{Kind: CommandReport, Target: bobID, Reason: reasons[i]}
	}

	banEv := mustRoomEvent(t, alice.Events, EventUserBanned, roomID)
	if banEv.User != bobID {
		t.Fatalf("unexpected ban event: %+v", banEv)
	}

	rooms, err := hub.Rooms(context.Background())
	if err != nil {
		t.Fatalf("rooms query: %v", err)
	}
	for _, r := range rooms {
		for _, member := range r.Members {
			if member == bobID {
				t.Fatalf("banned participant still a member of %q", r.ID)
			}
		}
	}

	// Re-joining the room he was banned from is rejected.
	bob.Commands <- &Command{Kind: CommandJoinRoom, Room: roomID}
	ev := mustEvent(t, bob.Events, EventError)
	if ev.Error == nil || ev.Error.Code != ErrCodeBanned {
		t.Fatalf("expected banned error, got %+v", ev)
	}

	// A fourth report must not re-emit the ban.
	settle()
	drain(alice.Events, EventUserBanned)
	carol.Commands <- &Command{Kind: CommandReport, Target: bobID, Reason: "Spam"}
	settle()
	if n := drain(alice.Events, EventUserBanned); n != 0 {
		t.Fatalf("ban event re-emitted %d times after threshold", n)
	}
}

func TestHubTypingRelay(t *testing.T) {
	hub, cancel := startHub(t, nil)
	defer cancel()

	alice, aliceID := connectClient(t, hub, "c-alice", "alice")
	bob, _ := connectClient(t, hub, "c-bob", "bob")

	alice.Commands <- &Command{Kind: CommandStartTyping, Room: GeneralRoomID}
	ev := mustEvent(t, bob.Events, EventTyping)
	if ev.User != aliceID || !ev.Typing {
		t.Fatalf("unexpected typing event: %+v", ev)
	}

	alice.Commands <- &Command{Kind: CommandStopTyping, Room: GeneralRoomID}
	for {
		ev = mustEvent(t, bob.Events, EventTyping)
		if !ev.Typing {
			break
		}
	}
	if ev.User != aliceID {
		t.Fatalf("unexpected typing stop event: %+v", ev)
	}
}

func TestHubDisconnectIsIdempotent(t *testing.T) {
	hub, cancel := startHub(t, nil)
	defer cancel()

	alice, _ := connectClient(t, hub, "c-alice", "alice")
	bob, bobID := connectClient(t, hub, "c-bob", "bob")

	hub.UnregisterClient(bob)
	hub.UnregisterClient(bob) // disconnect races must never fail
	settle()

	// Alice sees the presence rebroadcast without bob.
	deadline := time.Now().Add(2 * time.Second)
	for {
		if time.Now().After(deadline) {
			t.Fatal("never saw bob leave the online set")
		}
		ev := mustEvent(t, alice.Events, EventPresence)
		if ev.User != bobID {
			continue
		}
		for _, p := range ev.Online {
			if p.ID == bobID {
				t.Fatal("disconnected participant still online")
			}
		}
		break
	}

	online, err := hub.Online(context.Background())
	if err != nil {
		t.Fatalf("online query: %v", err)
	}
	if len(online) != 1 || online[0].Username != "alice" {
		t.Fatalf("unexpected online set: %+v", online)
	}
}

func TestHubSweepWarnsOnceThenCloses(t *testing.T) {
	mock := clock.NewMock()
	hub, cancel := startHub(t, mock)
	defer cancel()
	settle() // let the hub install its sweep ticker

	alice, _ := connectClient(t, hub, "c-alice", "alice")
	bob, _ := connectClient(t, hub, "c-bob", "bob")

	alice.Commands <- &Command{Kind: CommandCreateRoom, Name: "Test", Private: true}
	created := mustEvent(t, alice.Events, EventRoomCreated)
	roomID := created.Room
	bob.Commands <- &Command{Kind: CommandJoinRoom, Room: roomID}
	mustRoomEvent(t, alice.Events, EventUserJoined, roomID)

	// Idle below the warning delay: nothing happens.
	mock.Add(8 * time.Minute)
	settle()
	if n := drain(alice.Events, EventRoomWarning); n != 0 {
		t.Fatalf("premature warning after 8m idle (%d)", n)
	}

	// Past the warning delay: exactly one warning for the room.
	mock.Add(90 * time.Second)
	warnEv := mustRoomEvent(t, alice.Events, EventRoomWarning, roomID)
	if warnEv.Remaining <= 0 || warnEv.Remaining > time.Minute {
		t.Fatalf("unexpected remaining time: %s", warnEv.Remaining)
	}
	settle()
	if n := drain(alice.Events, EventRoomWarning); n != 0 {
		t.Fatalf("warning re-fired %d times while in Warned state", n)
	}

	// Past the cleanup delay: the room is reclaimed and members redirected.
	mock.Add(time.Minute)
	closedEv := mustRoomEvent(t, bob.Events, EventRoomClosed, roomID)
	if closedEv.Reason != "inactivity" || closedEv.Redirect != GeneralRoomID {
		t.Fatalf("unexpected closure event: %+v", closedEv)
	}
	settle()
	if n := drain(alice.Events, EventRoomWarning); n != 0 {
		t.Fatalf("warning emitted during closure (%d)", n)
	}

	// System rooms survived the whole idle period.
	rooms, err := hub.Rooms(context.Background())
	if err != nil {
		t.Fatalf("rooms query: %v", err)
	}
	if len(rooms) != 2 {
		t.Fatalf("expected only the system rooms, got %+v", rooms)
	}
}
