// Package store persists session message logs. Persistence is
// best-effort: no operation ever returns an error to the caller;
// storage failures degrade to a no-op or empty result plus a log line,
// and the conversation carries on from memory.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/rawitjan/Forte-hackathon/internal/session"
)

// ListLimit caps how many sessions a recency listing returns.
const ListLimit = 20

// Summary identifies a stored session without its message bodies.
type Summary struct {
	ID        string
	Title     string
	CreatedAt time.Time
}

// Store is the session persistence capability. Every orchestrator has
// one; when storage is unavailable it is a Noop rather than a nil that
// call sites would have to probe.
type Store interface {
	Append(ctx context.Context, sessionID, role, content string)
	Load(ctx context.Context, sessionID string) []session.Message
	ListRecent(ctx context.Context) []Summary
}

// Open returns a SQLite-backed store, or a no-op store when the
// database cannot be opened. Availability is decided once, here.
func Open(path string, logger *slog.Logger) Store {
	db, err := sql.Open("sqlite3", path)
	if err == nil {
		err = initSchema(db)
	}
	if err != nil {
		logger.Warn("session store unavailable, history will not be saved", "path", path, "error", err)
		return NewNoop(logger)
	}
	logger.Info("session store ready", "path", path)
	return &SQLiteStore{db: db, logger: logger}
}

func initSchema(db *sql.DB) error {
	createTable := `
	CREATE TABLE IF NOT EXISTS chat_sessions (
		id TEXT PRIMARY KEY,
		title TEXT,
		created_at INTEGER,
		messages TEXT
	);`

	if _, err := db.Exec(createTable); err != nil {
		return fmt.Errorf("failed to create chat_sessions table: %w", err)
	}
	return nil
}

// SQLiteStore persists each session as one row holding the full
// message list as JSON, upserted whole on every append (last writer
// wins; single-writer-per-session is assumed).
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// Append loads the current message list, fixes the title on the first
// user message, appends the new message with a fresh unique marker and
// writes the whole record back.
func (s *SQLiteStore) Append(ctx context.Context, sessionID, role, content string) {
	sess, found := s.fetch(ctx, sessionID)
	if len(sess.Messages) == 0 && sess.Title == "" && role == session.RoleUser {
		sess.Title = session.DeriveTitle(content)
	}

	sess.Messages = append(sess.Messages, session.Message{
		Role:      role,
		Content:   content,
		Timestamp: uuid.NewString(),
	})

	raw, err := json.Marshal(sess.Messages)
	if err != nil {
		s.logger.Warn("failed to encode messages", "session_id", sessionID, "error", err)
		return
	}

	if found {
		_, err = s.db.ExecContext(ctx,
			"UPDATE chat_sessions SET messages = ?, title = ? WHERE id = ?",
			string(raw), sess.Title, sessionID,
		)
	} else {
		_, err = s.db.ExecContext(ctx,
			"INSERT INTO chat_sessions (id, title, created_at, messages) VALUES (?, ?, ?, ?)",
			sessionID, sess.Title, time.Now().UnixNano(), string(raw),
		)
	}
	if err != nil {
		s.logger.Warn("failed to save session", "session_id", sessionID, "error", err)
		return
	}

	s.logger.Debug("session saved", "session_id", sessionID, "message_count", len(sess.Messages))
}

// fetch returns the stored session and whether a row exists at all.
func (s *SQLiteStore) fetch(ctx context.Context, sessionID string) (session.Session, bool) {
	sess := session.Session{ID: sessionID}

	var raw string
	var title sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT messages, title FROM chat_sessions WHERE id = ?", sessionID,
	).Scan(&raw, &title)
	if err == sql.ErrNoRows {
		return sess, false
	}
	if err != nil {
		s.logger.Warn("failed to read session", "session_id", sessionID, "error", err)
		return sess, false
	}

	sess.Title = title.String
	if err := json.Unmarshal([]byte(raw), &sess.Messages); err != nil {
		s.logger.Warn("failed to decode stored messages", "session_id", sessionID, "error", err)
		sess.Messages = nil
	}
	return sess, true
}

// Load returns the ordered message list for a session, empty when the
// session is absent or storage fails.
func (s *SQLiteStore) Load(ctx context.Context, sessionID string) []session.Message {
	sess, _ := s.fetch(ctx, sessionID)
	return sess.Messages
}

// ListRecent returns up to ListLimit session summaries, most recently
// created first, without message bodies.
func (s *SQLiteStore) ListRecent(ctx context.Context) []Summary {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, title, created_at FROM chat_sessions ORDER BY created_at DESC LIMIT ?", ListLimit,
	)
	if err != nil {
		s.logger.Warn("failed to list sessions", "error", err)
		return nil
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var sum Summary
		var title sql.NullString
		var createdAt int64
		if err := rows.Scan(&sum.ID, &title, &createdAt); err != nil {
			s.logger.Warn("failed to scan session row", "error", err)
			continue
		}
		sum.Title = title.String
		sum.CreatedAt = time.Unix(0, createdAt)
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		s.logger.Warn("failed to iterate session rows", "error", err)
	}
	return summaries
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Noop is the explicit "storage unavailable" store: appends vanish and
// reads come back empty, so conversation flow is unaffected.
type Noop struct {
	logger *slog.Logger
}

// NewNoop creates a store that drops everything.
func NewNoop(logger *slog.Logger) *Noop {
	return &Noop{logger: logger}
}

func (n *Noop) Append(ctx context.Context, sessionID, role, content string) {
	n.logger.Debug("session store unavailable, message not saved", "session_id", sessionID, "role", role)
}

func (n *Noop) Load(ctx context.Context, sessionID string) []session.Message {
	return nil
}

func (n *Noop) ListRecent(ctx context.Context) []Summary {
	return nil
}
