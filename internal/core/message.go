package core

import "time"

// MessageType distinguishes message payloads. Media payloads are opaque to
// the coordinator; it relays the reference without inspecting it.
type MessageType string

const (
	MessageText   MessageType = "text"
	MessageImage  MessageType = "image"
	MessageVideo  MessageType = "video"
	MessageSystem MessageType = "system"
)

// Message is the domain model for a chat message.
type Message struct {
	ID        string
	Room      string
	SenderID  string
	Sender    string
	Content   string
	Type      MessageType
	MediaRef  string
	CreatedAt time.Time
}
