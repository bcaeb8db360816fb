package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	ProtocolVersion = 1

	InboundTypeHello       = "hello"
	InboundTypeMsg         = "msg"
	InboundTypeCreateRoom  = "create_room"
	InboundTypeJoin        = "join"
	InboundTypeLeave       = "leave"
	InboundTypeInvite      = "invite"
	InboundTypeCloseRoom   = "close_room"
	InboundTypeReport      = "report"
	InboundTypeTypingStart = "typing_start"
	InboundTypeTypingStop  = "typing_stop"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"
)

// HelloData is sent by the client to introduce its ephemeral profile.
type HelloData struct {
	Username string `json:"username"`
	Age      int    `json:"age,omitempty"`
	Gender   string `json:"gender,omitempty"`
	City     string `json:"city,omitempty"`
	Country  string `json:"country,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
	Protocol int    `json:"protocol,omitempty"`
}

// MsgData is a chat message from the client. Media references pass through
// uninterpreted.
type MsgData struct {
	Room     string `json:"room"`
	Content  string `json:"content"`
	Type     string `json:"type,omitempty"`
	MediaRef string `json:"media_ref,omitempty"`
}

// CreateRoomData requests a new room.
type CreateRoomData struct {
	Name    string `json:"name"`
	Private bool   `json:"private"`
}

// RoomData addresses a room (join, leave, close, typing).
type RoomData struct {
	Room string `json:"room"`
}

// InviteData invites a participant into a private room.
type InviteData struct {
	Room   string `json:"room"`
	Target string `json:"target"`
}

// ReportData reports a participant for abuse.
type ReportData struct {
	Target string `json:"target"`
	Reason string `json:"reason"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// Outbound event names.
const (
	EventConnected   = "connected"
	EventPresence    = "presence"
	EventRoomCreated = "room_created"
	EventRoomClosed  = "room_closed"
	EventRoomWarning = "room_warning"
	EventMessage     = "message"
	EventHistory     = "history"
	EventUserJoined  = "user_joined"
	EventUserLeft    = "user_left"
	EventUserBanned  = "user_banned"
	EventInvited     = "invited"
	EventTyping      = "typing"
)

// ParticipantData describes a connected participant.
type ParticipantData struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Age      int    `json:"age,omitempty"`
	Gender   string `json:"gender,omitempty"`
	City     string `json:"city,omitempty"`
	Country  string `json:"country,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
	Online   bool   `json:"online"`
}

// RoomInfoData describes a room.
type RoomInfoData struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Private bool     `json:"private"`
	Owner   string   `json:"owner"`
	Members []string `json:"members"`
}

// EventMessageData carries a delivered chat message.
type EventMessageData struct {
	ID       string `json:"id"`
	Room     string `json:"room"`
	SenderID string `json:"sender_id"`
	Sender   string `json:"sender"`
	Content  string `json:"content"`
	Type     string `json:"msg_type"`
	MediaRef string `json:"media_ref,omitempty"`
	TS       int64  `json:"ts"`
}

// EventHistoryData replays recent messages after a join.
type EventHistoryData struct {
	Room     string             `json:"room"`
	Messages []EventMessageData `json:"messages"`
}

// EventConnectedData confirms registration.
type EventConnectedData struct {
	Self ParticipantData `json:"self"`
}

// EventPresenceData carries the full online set.
type EventPresenceData struct {
	User   string            `json:"user"`
	Online []ParticipantData `json:"online"`
}

// EventRoomCreatedData announces a new room.
type EventRoomCreatedData struct {
	Room RoomInfoData `json:"room"`
}

// EventRoomClosedData announces a room's removal.
type EventRoomClosedData struct {
	Room     string `json:"room"`
	Reason   string `json:"reason"`
	Redirect string `json:"redirect"`
}

// EventRoomWarningData warns about an upcoming closure.
type EventRoomWarningData struct {
	Room             string `json:"room"`
	SecondsRemaining int64  `json:"seconds_remaining"`
}

// EventUserData notifies about a user joining, leaving or being banned.
type EventUserData struct {
	Room     string `json:"room"`
	User     string `json:"user"`
	Username string `json:"username,omitempty"`
}

// EventInvitedData notifies a participant of a pending invite.
type EventInvitedData struct {
	Room     RoomInfoData `json:"room"`
	From     string       `json:"from"`
	Username string       `json:"username,omitempty"`
}

// EventTypingData relays a typing indicator change.
type EventTypingData struct {
	Room     string `json:"room"`
	User     string `json:"user"`
	Username string `json:"username,omitempty"`
	Typing   bool   `json:"typing"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
