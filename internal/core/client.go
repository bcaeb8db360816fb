package core

// Client is one connection as seen by the hub. The transport layer pushes
// parsed commands in and drains events out.
type Client struct {
	ConnID   string
	Commands chan *Command
	Events   chan *Event

	// participant is set by the hub once the client has connected with a
	// profile. Only the hub goroutine touches it.
	participant *Participant

	// done is closed by the hub when the client is unregistered.
	done chan struct{}
}

// NewClient constructs a client with initialized channels.
func NewClient(connID string) *Client {
	return &Client{
		ConnID:   connID,
		Commands: make(chan *Command, 8),
		Events:   make(chan *Event, 16),
		done:     make(chan struct{}),
	}
}

// Participant returns the identity bound to this connection, or nil before
// the connect command has been processed.
func (c *Client) Participant() *Participant {
	return c.participant
}
