package core

// Profile is the ephemeral identity a user picks before connecting.
// There is no account behind it; it lives and dies with the connection.
type Profile struct {
	Username string
	Age      int
	Gender   string
	City     string
	Country  string
	Avatar   string
}

// Participant is a connected user as seen by the coordinator.
type Participant struct {
	ID string
	Profile
	Online bool
}
