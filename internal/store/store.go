package store

import (
	"context"
	"time"
)

// Message is a persisted chat message. Rooms and participants themselves are
// never persisted; history is a convenience replay, not a source of truth.
type Message struct {
	ID        string
	Room      string
	SenderID  string
	Sender    string
	Content   string
	Type      string
	MediaRef  string
	CreatedAt time.Time
}

// Report is a persisted moderation report. Reports are append-only and are
// kept even after the subject is banned.
type Report struct {
	ID         string
	ReporterID string
	SubjectID  string
	Reason     string
	CreatedAt  time.Time
}

// Store persists message history and the moderation audit trail.
type Store interface {
	// SaveMessage appends a message to the room's history.
	SaveMessage(ctx context.Context, m *Message) error

	// RecentMessages returns up to limit messages for a room, oldest first.
	RecentMessages(ctx context.Context, room string, limit int) ([]Message, error)

	// SaveReport appends a report to the audit trail.
	SaveReport(ctx context.Context, r *Report) error

	// ReportsFor returns every report filed against a subject, oldest first.
	ReportsFor(ctx context.Context, subjectID string) ([]Report, error)

	// Close releases underlying resources.
	Close() error
}
