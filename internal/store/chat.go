package store

import (
	"context"
	"fmt"
	"time"
)

// ChatMessage mirrors one chat_messages row.
type ChatMessage struct {
	ID          int64
	Role        string
	Content     string
	CreatedAtMs int64
}

// InsertChatMessage appends a message with the current time as
// created_at_ms.
func (s *Store) InsertChatMessage(ctx context.Context, role, content string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_messages (role, content, created_at_ms) VALUES (?, ?, ?)`,
		role, content, time.Now().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("insert chat message: %w", err)
	}
	return res.LastInsertId()
}

// FetchChatMessages returns at most limit messages, newest first.
func (s *Store) FetchChatMessages(ctx context.Context, limit int) ([]ChatMessage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, role, content, created_at_ms FROM chat_messages
		ORDER BY created_at_ms DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query chat messages: %w", err)
	}
	defer rows.Close()

	var out []ChatMessage
	for rows.Next() {
		var m ChatMessage
		if err := rows.Scan(&m.ID, &m.Role, &m.Content, &m.CreatedAtMs); err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
