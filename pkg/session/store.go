// femtoclaw - multi-channel AI agent gateway
// License: MIT

// Package session persists conversation history and the tool-call audit
// trail in a local sqlite database.
package session

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Message is one conversation turn within a session.
type Message struct {
	Role      string
	Content   string
	CreatedAt time.Time
}

// ToolCallRecord is one audited tool-call decision.
type ToolCallRecord struct {
	ToolCallID string
	SessionKey string
	AgentID    string
	ToolName   string
	Blocked    bool
	Reason     string
	CreatedAt  time.Time
}

// Store is the sqlite-backed session store. It is safe for concurrent use;
// database/sql serializes access to the single connection pool.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the database at dbPath.
func NewStore(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create session dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}

	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_key TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_key, id)`,
		`CREATE TABLE IF NOT EXISTS tool_calls (
			tool_call_id TEXT PRIMARY KEY,
			session_key TEXT NOT NULL,
			agent_id TEXT NOT NULL,
			tool_name TEXT NOT NULL,
			blocked INTEGER NOT NULL,
			reason TEXT NOT NULL,
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tool_calls_session ON tool_calls(session_key, created_at)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("init session schema: %w", err)
		}
	}
	return nil
}

// AppendMessage records one conversation turn.
func (s *Store) AppendMessage(ctx context.Context, sessionKey string, msg Message) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO messages (session_key, role, content, created_at) VALUES (?, ?, ?, ?)",
		sessionKey, msg.Role, msg.Content, msg.CreatedAt)
	return err
}

// History returns the most recent limit messages of a session in
// chronological order. limit <= 0 returns everything.
func (s *Store) History(ctx context.Context, sessionKey string, limit int) ([]Message, error) {
	query := "SELECT role, content, created_at FROM messages WHERE session_key = ? ORDER BY id"
	args := []any{sessionKey}
	if limit > 0 {
		query = `SELECT role, content, created_at FROM (
			SELECT id, role, content, created_at FROM messages
			WHERE session_key = ? ORDER BY id DESC LIMIT ?
		) ORDER BY id`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		history = append(history, m)
	}
	return history, rows.Err()
}

// Clear drops all messages of a session.
func (s *Store) Clear(ctx context.Context, sessionKey string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM messages WHERE session_key = ?", sessionKey)
	return err
}

// RecordToolCall audits one gate decision.
func (s *Store) RecordToolCall(ctx context.Context, rec ToolCallRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO tool_calls (tool_call_id, session_key, agent_id, tool_name, blocked, reason, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		rec.ToolCallID, rec.SessionKey, rec.AgentID, rec.ToolName, rec.Blocked, rec.Reason, rec.CreatedAt)
	return err
}

// ToolCalls returns the audit trail for a session, newest first.
func (s *Store) ToolCalls(ctx context.Context, sessionKey string) ([]ToolCallRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT tool_call_id, session_key, agent_id, tool_name, blocked, reason, created_at FROM tool_calls WHERE session_key = ? ORDER BY created_at DESC",
		sessionKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []ToolCallRecord
	for rows.Next() {
		var r ToolCallRecord
		if err := rows.Scan(&r.ToolCallID, &r.SessionKey, &r.AgentID, &r.ToolName, &r.Blocked, &r.Reason, &r.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
