package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/salonlabs/salon-server/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS messages (
	id         TEXT PRIMARY KEY,
	room       TEXT NOT NULL,
	sender_id  TEXT NOT NULL,
	sender     TEXT NOT NULL,
	content    TEXT NOT NULL,
	type       TEXT NOT NULL,
	media_ref  TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_messages_room ON messages(room, created_at);

CREATE TABLE IF NOT EXISTS reports (
	id          TEXT PRIMARY KEY,
	reporter_id TEXT NOT NULL,
	subject_id  TEXT NOT NULL,
	reason      TEXT NOT NULL,
	created_at  DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reports_subject ON reports(subject_id, created_at);
`

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New opens (or creates) the database at dbPath and applies the schema.
func New(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveMessage appends a message to the room's history.
func (s *SQLiteStore) SaveMessage(ctx context.Context, m *store.Message) error {
	query := `
		INSERT INTO messages (id, room, sender_id, sender, content, type, media_ref, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := s.db.ExecContext(ctx, query,
		m.ID, m.Room, m.SenderID, m.Sender, m.Content, m.Type, m.MediaRef, m.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// RecentMessages returns up to limit messages for a room, oldest first.
func (s *SQLiteStore) RecentMessages(ctx context.Context, room string, limit int) ([]store.Message, error) {
	query := `
		SELECT id, room, sender_id, sender, content, type, media_ref, created_at
		FROM (
			SELECT * FROM messages
			WHERE room = ?
			ORDER BY created_at DESC
			LIMIT ?
		)
		ORDER BY created_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, room, limit)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var out []store.Message
	for rows.Next() {
		var m store.Message
		if err := rows.Scan(&m.ID, &m.Room, &m.SenderID, &m.Sender, &m.Content, &m.Type, &m.MediaRef, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// SaveReport appends a report to the audit trail.
func (s *SQLiteStore) SaveReport(ctx context.Context, r *store.Report) error {
	query := `
		INSERT INTO reports (id, reporter_id, subject_id, reason, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	if _, err := s.db.ExecContext(ctx, query,
		r.ID, r.ReporterID, r.SubjectID, r.Reason, r.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

// ReportsFor returns every report filed against a subject, oldest first.
func (s *SQLiteStore) ReportsFor(ctx context.Context, subjectID string) ([]store.Report, error) {
	query := `
		SELECT id, reporter_id, subject_id, reason, created_at
		FROM reports
		WHERE subject_id = ?
		ORDER BY created_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, subjectID)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	var out []store.Report
	for rows.Next() {
		var r store.Report
		if err := rows.Scan(&r.ID, &r.ReporterID, &r.SubjectID, &r.Reason, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
