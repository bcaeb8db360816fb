package core

import (
	"context"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"

	"github.com/salonlabs/salon-server/internal/store"
	"github.com/salonlabs/salon-server/internal/utils"
)

// Limits carries the coordinator's tuning knobs.
type Limits struct {
	MaxRoomMembers int
	MinRoomMembers int
	BanThreshold   int
	WarningDelay   time.Duration
	CleanupDelay   time.Duration
	SweepInterval  time.Duration
	HistoryLimit   int
}

// DefaultLimits returns the reference limits.
func DefaultLimits() Limits {
	return Limits{
		MaxRoomMembers: 100,
		MinRoomMembers: 5,
		BanThreshold:   3,
		WarningDelay:   9 * time.Minute,
		CleanupDelay:   10 * time.Minute,
		SweepInterval:  30 * time.Second,
		HistoryLimit:   50,
	}
}

type request struct {
	client *Client
	cmd    *Command
}

// Hub is the coordinator. A single goroutine inside Run owns the presence
// registry, room directory and moderation ledger; commands, disconnects,
// read queries and the activity sweep are all applied on that goroutine, so
// every operation is atomic with respect to the others.
type Hub struct {
	limits Limits
	clk    clock.Clock
	store  store.Store // may be nil
	log    zerolog.Logger

	presence *Presence
	dir      *Directory
	ledger   *Ledger
	monitor  *Monitor
	relay    *Relay

	registrations   chan *Client
	unregistrations chan *Client
	requests        chan request
	queries         chan func()

	active map[*Client]struct{}
}

// NewHub creates the coordinator. The store may be nil, in which case no
// history or report audit is persisted.
func NewHub(limits Limits, clk clock.Clock, st store.Store, logger *zerolog.Logger) *Hub {
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	dir := NewDirectory(clk, limits.MaxRoomMembers)
	return &Hub{
		limits:          limits,
		clk:             clk,
		store:           st,
		log:             *logger,
		presence:        NewPresence(),
		dir:             dir,
		ledger:          NewLedger(clk, limits.BanThreshold),
		monitor:         NewMonitor(dir, clk, limits.MinRoomMembers, limits.WarningDelay, limits.CleanupDelay),
		relay:           NewRelay(dir),
		registrations:   make(chan *Client),
		unregistrations: make(chan *Client),
		requests:        make(chan request, 64),
		queries:         make(chan func()),
		active:          make(map[*Client]struct{}),
	}
}

// RegisterClient hands a new connection to the hub.
func (h *Hub) RegisterClient(c *Client) {
	h.registrations <- c
}

// UnregisterClient tears a connection down. Safe to call for connections
// the hub no longer knows about.
func (h *Hub) UnregisterClient(c *Client) {
	h.unregistrations <- c
}

// Run processes events until the context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	ticker := h.clk.Ticker(h.limits.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.registrations:
			h.active[c] = struct{}{}
			go h.pump(ctx, c)
		case c := <-h.unregistrations:
			h.disconnect(c)
		case req := <-h.requests:
			h.handle(ctx, req.client, req.cmd)
		case fn := <-h.queries:
			fn()
		case <-ticker.C:
			h.sweep(ctx)
		}
	}
}

// pump forwards one client's commands into the shared request channel.
func (h *Hub) pump(ctx context.Context, c *Client) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case cmd := <-c.Commands:
			select {
			case h.requests <- request{client: c, cmd: cmd}:
			case <-ctx.Done():
				return
			case <-c.done:
				return
			}
		}
	}
}

// Rooms returns snapshots of every room, applied on the hub goroutine.
func (h *Hub) Rooms(ctx context.Context) ([]*RoomInfo, error) {
	var out []*RoomInfo
	err := h.do(ctx, func() {
		for _, room := range h.dir.List() {
			out = append(out, room.Snapshot())
		}
	})
	return out, err
}

// Online returns the connected participants in registration order.
func (h *Hub) Online(ctx context.Context) ([]Participant, error) {
	var out []Participant
	err := h.do(ctx, func() {
		out = h.onlineSnapshot()
	})
	return out, err
}

func (h *Hub) do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	select {
	case h.queries <- func() { fn(); close(done) }:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hub) handle(ctx context.Context, c *Client, cmd *Command) {
	if _, ok := h.active[c]; !ok {
		return // unregistered while the command was queued
	}
	if cmd.Kind == CommandConnect {
		h.connect(ctx, c, cmd.Profile)
		return
	}
	if c.participant == nil {
		h.sendError(c, coreError(ErrCodeBadRequest, "connect first"))
		return
	}
	switch cmd.Kind {
	case CommandSendMessage:
		h.sendMessage(ctx, c, cmd)
	case CommandCreateRoom:
		h.createRoom(c, cmd)
	case CommandJoinRoom:
		h.joinRoom(ctx, c, cmd.Room)
	case CommandLeaveRoom:
		h.leaveRoom(c, cmd.Room)
	case CommandInvite:
		h.invite(c, cmd.Room, cmd.Target)
	case CommandCloseRoom:
		h.closeRoom(c, cmd.Room)
	case CommandReport:
		h.report(ctx, c, cmd.Target, cmd.Reason)
	case CommandStartTyping:
		h.typing(c, cmd.Room, true)
	case CommandStopTyping:
		h.typing(c, cmd.Room, false)
	default:
		h.sendError(c, coreError(ErrCodeBadRequest, "unknown command"))
	}
}

func (h *Hub) connect(ctx context.Context, c *Client, profile Profile) {
	participant, err := h.presence.Register(c.ConnID, profile)
	if err != nil {
		h.sendError(c, errorFor(err))
		return
	}
	c.participant = participant
	h.relay.Attach(participant.ID, c)

	if _, err := h.dir.Join(participant.ID, GeneralRoomID); err != nil {
		// General is full; the connection stays usable but roomless.
		h.log.Warn().Err(err).Str("participant", participant.ID).Msg("could not join general")
	}

	h.relay.Send(participant.ID, &Event{Kind: EventConnected, Self: participant})
	h.sendHistory(ctx, participant.ID, GeneralRoomID)
	h.broadcastPresence(participant, EventUserJoined)

	h.log.Info().
		Str("participant", participant.ID).
		Str("username", participant.Username).
		Msg("participant connected")
}

func (h *Hub) disconnect(c *Client) {
	if _, ok := h.active[c]; !ok {
		return
	}
	delete(h.active, c)
	close(c.done)

	participant, ok := h.presence.Unregister(c.ConnID)
	if ok {
		h.relay.Detach(participant.ID)
		for _, room := range h.dir.RemoveEverywhere(participant.ID) {
			if room.ID == GeneralRoomID {
				continue // covered by the presence broadcast
			}
			h.relay.Broadcast(room.ID, &Event{
				Kind:     EventUserLeft,
				Room:     room.ID,
				User:     participant.ID,
				Username: participant.Username,
			})
		}
		h.broadcastPresence(participant, EventUserLeft)
		h.log.Info().Str("participant", participant.ID).Msg("participant disconnected")
	}
	close(c.Events)
}

func (h *Hub) sendMessage(ctx context.Context, c *Client, cmd *Command) {
	p := c.participant
	room, ok := h.dir.Get(cmd.Room)
	if !ok {
		h.sendError(c, errorFor(ErrRoomNotFound))
		return
	}
	if !room.HasMember(p.ID) {
		h.sendError(c, errorFor(ErrNotInRoom))
		return
	}

	msg := cmd.Message
	msg.ID = utils.NewID()
	msg.Room = room.ID
	msg.SenderID = p.ID
	msg.Sender = p.Username
	msg.CreatedAt = h.clk.Now()
	if msg.Type == "" {
		msg.Type = MessageText
	}

	h.saveMessage(ctx, &msg)
	h.dir.Touch(room.ID)
	h.relay.Broadcast(room.ID, &Event{Kind: EventMessage, Room: room.ID, Message: msg})
}

func (h *Hub) createRoom(c *Client, cmd *Command) {
	p := c.participant
	var seed []string
	if !cmd.Private {
		seed = h.dir.General().Members()
	}
	room, err := h.dir.Create(p.ID, cmd.Name, cmd.Private, seed)
	if err != nil {
		h.sendError(c, errorFor(err))
		return
	}

	ev := &Event{Kind: EventRoomCreated, Room: room.ID, User: p.ID, RoomInfo: room.Snapshot()}
	if room.Private {
		h.relay.Send(p.ID, ev)
	} else {
		h.relay.Broadcast(GeneralRoomID, ev)
	}
	h.log.Info().Str("room", room.ID).Str("name", room.Name).Bool("private", room.Private).Msg("room created")
}

func (h *Hub) joinRoom(ctx context.Context, c *Client, roomID string) {
	p := c.participant
	room, err := h.dir.Join(p.ID, roomID)
	if err != nil {
		h.sendError(c, errorFor(err))
		return
	}
	h.relay.Broadcast(room.ID, &Event{
		Kind:     EventUserJoined,
		Room:     room.ID,
		User:     p.ID,
		Username: p.Username,
		RoomInfo: room.Snapshot(),
	})
	h.sendHistory(ctx, p.ID, room.ID)
}

func (h *Hub) leaveRoom(c *Client, roomID string) {
	p := c.participant
	room, err := h.dir.Leave(p.ID, roomID)
	if err != nil {
		h.sendError(c, errorFor(err))
		return
	}
	ev := &Event{Kind: EventUserLeft, Room: room.ID, User: p.ID, Username: p.Username}
	h.relay.Broadcast(room.ID, ev)
	h.relay.Send(p.ID, ev)
}

func (h *Hub) invite(c *Client, roomID, targetID string) {
	p := c.participant
	room, added, err := h.dir.Invite(p.ID, roomID, targetID)
	if err != nil {
		h.sendError(c, errorFor(err))
		return
	}
	h.dir.Touch(roomID)
	if !added {
		return // already a member, already invited or banned: absorbed
	}
	h.relay.Send(targetID, &Event{
		Kind:     EventInvited,
		Room:     room.ID,
		User:     p.ID,
		Username: p.Username,
		RoomInfo: room.Snapshot(),
	})
}

func (h *Hub) closeRoom(c *Client, roomID string) {
	p := c.participant
	room, err := h.dir.Close(p.ID, roomID)
	if err != nil {
		h.sendError(c, errorFor(err))
		return
	}
	ev := &Event{
		Kind:     EventRoomClosed,
		Room:     room.ID,
		Reason:   "closed by owner",
		Redirect: GeneralRoomID,
	}
	for _, id := range room.Members() {
		h.relay.Send(id, ev)
	}
	h.log.Info().Str("room", room.ID).Str("owner", p.ID).Msg("room closed by owner")
}

func (h *Hub) report(ctx context.Context, c *Client, targetID, reason string) {
	p := c.participant
	if _, ok := h.presence.GetByID(targetID); !ok {
		h.sendError(c, errorFor(ErrUserNotFound))
		return
	}
	report, count := h.ledger.Append(p.ID, targetID, reason)
	h.saveReport(ctx, &report)
	h.log.Info().
		Str("subject", targetID).
		Str("reporter", p.ID).
		Int("count", count).
		Msg("participant reported")

	if !h.ledger.EvaluateBan(targetID) {
		return
	}
	target, _ := h.presence.GetByID(targetID)
	for _, room := range h.dir.BanEverywhere(targetID) {
		ev := &Event{Kind: EventUserBanned, Room: room.ID, User: targetID}
		if target != nil {
			ev.Username = target.Username
		}
		h.relay.Broadcast(room.ID, ev)
		h.relay.Send(targetID, ev)
	}
	h.log.Warn().Str("subject", targetID).Int("reports", count).Msg("participant banned")
}

func (h *Hub) typing(c *Client, roomID string, typing bool) {
	p := c.participant
	room, ok := h.dir.Get(roomID)
	if !ok || !room.HasMember(p.ID) {
		return
	}
	h.relay.Broadcast(room.ID, &Event{
		Kind:     EventTyping,
		Room:     room.ID,
		User:     p.ID,
		Username: p.Username,
		Typing:   typing,
	})
}

// sweep runs the activity monitor and relays its transitions.
func (h *Hub) sweep(ctx context.Context) {
	warned, closed := h.monitor.Sweep()

	for _, w := range warned {
		h.relay.Broadcast(w.Room.ID, &Event{
			Kind:      EventRoomWarning,
			Room:      w.Room.ID,
			Remaining: w.Remaining,
		})
		h.systemMessage(ctx, w.Room.ID, fmt.Sprintf(
			"Room %q will close in %s due to low activity (minimum %d participants).",
			w.Room.Name, w.Remaining.Round(time.Second), h.limits.MinRoomMembers))
		h.log.Info().Str("room", w.Room.ID).Dur("remaining", w.Remaining).Msg("room warned")
	}

	for _, room := range closed {
		ev := &Event{
			Kind:     EventRoomClosed,
			Room:     room.ID,
			Reason:   "inactivity",
			Redirect: GeneralRoomID,
		}
		for _, id := range room.Members() {
			h.relay.Send(id, ev)
		}
		h.systemMessage(ctx, GeneralRoomID, fmt.Sprintf(
			"Room %q was closed due to low activity.", room.Name))
		h.log.Info().Str("room", room.ID).Msg("room reclaimed")
	}
}

// systemMessage posts a server-authored message into a room.
func (h *Hub) systemMessage(ctx context.Context, roomID, content string) {
	msg := Message{
		ID:        utils.NewID(),
		Room:      roomID,
		Sender:    SystemOwner,
		Content:   content,
		Type:      MessageSystem,
		CreatedAt: h.clk.Now(),
	}
	h.saveMessage(ctx, &msg)
	h.relay.Broadcast(roomID, &Event{Kind: EventMessage, Room: roomID, Message: msg})
}

// broadcastPresence rebroadcasts the online set to the default room.
func (h *Hub) broadcastPresence(about *Participant, kind EventKind) {
	h.relay.Broadcast(GeneralRoomID, &Event{
		Kind:     EventPresence,
		Room:     GeneralRoomID,
		User:     about.ID,
		Username: about.Username,
		Online:   h.onlineSnapshot(),
	})
	if kind == EventUserJoined {
		h.relay.Broadcast(GeneralRoomID, &Event{
			Kind:     EventUserJoined,
			Room:     GeneralRoomID,
			User:     about.ID,
			Username: about.Username,
		})
	}
}

func (h *Hub) onlineSnapshot() []Participant {
	online := h.presence.ListOnline()
	out := make([]Participant, 0, len(online))
	for _, p := range online {
		out = append(out, *p)
	}
	return out
}

func (h *Hub) sendHistory(ctx context.Context, participantID, roomID string) {
	if h.store == nil || h.limits.HistoryLimit <= 0 {
		return
	}
	stored, err := h.store.RecentMessages(ctx, roomID, h.limits.HistoryLimit)
	if err != nil {
		h.log.Warn().Err(err).Str("room", roomID).Msg("load history")
		return
	}
	if len(stored) == 0 {
		return
	}
	messages := make([]Message, 0, len(stored))
	for _, m := range stored {
		messages = append(messages, Message{
			ID:        m.ID,
			Room:      m.Room,
			SenderID:  m.SenderID,
			Sender:    m.Sender,
			Content:   m.Content,
			Type:      MessageType(m.Type),
			MediaRef:  m.MediaRef,
			CreatedAt: m.CreatedAt,
		})
	}
	h.relay.Send(participantID, &Event{Kind: EventHistory, Room: roomID, Messages: messages})
}

func (h *Hub) saveMessage(ctx context.Context, msg *Message) {
	if h.store == nil {
		return
	}
	err := h.store.SaveMessage(ctx, &store.Message{
		ID:        msg.ID,
		Room:      msg.Room,
		SenderID:  msg.SenderID,
		Sender:    msg.Sender,
		Content:   msg.Content,
		Type:      string(msg.Type),
		MediaRef:  msg.MediaRef,
		CreatedAt: msg.CreatedAt,
	})
	if err != nil {
		h.log.Warn().Err(err).Str("room", msg.Room).Msg("save message")
	}
}

func (h *Hub) saveReport(ctx context.Context, r *Report) {
	if h.store == nil {
		return
	}
	err := h.store.SaveReport(ctx, &store.Report{
		ID:         r.ID,
		ReporterID: r.ReporterID,
		SubjectID:  r.SubjectID,
		Reason:     r.Reason,
		CreatedAt:  r.CreatedAt,
	})
	if err != nil {
		h.log.Warn().Err(err).Str("subject", r.SubjectID).Msg("save report")
	}
}

func (h *Hub) sendError(c *Client, cerr *CoreError) {
	select {
	case c.Events <- &Event{Kind: EventError, Error: cerr}:
	default:
	}
}
