package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// AppendMessage writes a single conversation turn for a session.
func (db *DB) AppendMessage(ctx context.Context, userID uuid.UUID, sessionID, role, content, model string, tokens int) (*ConversationEntry, error) {
	var entry ConversationEntry
	err := db.pool.QueryRow(ctx,
		`INSERT INTO agent_conversations (user_id, session_id, role, content, model, tokens)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, user_id, session_id, role, content, tokens, COALESCE(model, ''), created_at`,
		userID, sessionID, role, content, model, tokens,
	).Scan(&entry.ID, &entry.UserID, &entry.SessionID, &entry.Role,
		&entry.Content, &entry.Tokens, &entry.Model, &entry.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to append message: %w", err)
	}
	return &entry, nil
}

// GetConversation returns all turns for a user's session in insertion order.
func (db *DB) GetConversation(ctx context.Context, userID uuid.UUID, sessionID string) ([]ConversationEntry, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, user_id, session_id, role, content, tokens, COALESCE(model, ''), created_at
		 FROM agent_conversations
		 WHERE user_id = $1 AND session_id = $2
		 ORDER BY created_at ASC`,
		userID, sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	defer rows.Close()

	var entries []ConversationEntry
	for rows.Next() {
		var entry ConversationEntry
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.SessionID, &entry.Role,
			&entry.Content, &entry.Tokens, &entry.Model, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan conversation entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ListSessions returns the distinct session IDs for a user, most recent first.
func (db *DB) ListSessions(ctx context.Context, userID uuid.UUID) ([]string, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT session_id FROM agent_conversations
		 WHERE user_id = $1
		 GROUP BY session_id
		 ORDER BY MAX(created_at) DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan session id: %w", err)
		}
		sessions = append(sessions, id)
	}
	return sessions, nil
}
