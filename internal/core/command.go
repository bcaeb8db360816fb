package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandConnect introduces the connection's profile. Must come first.
	CommandConnect CommandKind = iota
	// CommandSendMessage delivers a chat message to room members.
	CommandSendMessage
	// CommandCreateRoom creates a public or private room.
	CommandCreateRoom
	// CommandJoinRoom adds the participant to a room.
	CommandJoinRoom
	// CommandLeaveRoom removes the participant from a room.
	CommandLeaveRoom
	// CommandInvite invites another participant to a private room.
	CommandInvite
	// CommandCloseRoom closes a private room the participant owns.
	CommandCloseRoom
	// CommandReport reports another participant for abuse.
	CommandReport
	// CommandStartTyping and CommandStopTyping relay typing indicators.
	CommandStartTyping
	CommandStopTyping
)

// Command represents an action requested by a client.
type Command struct {
	Kind    CommandKind
	Room    string
	Target  string // participant id for invite/report
	Name    string // room name for create
	Private bool   // room visibility for create
	Reason  string // report reason
	Profile Profile
	Message Message
}
