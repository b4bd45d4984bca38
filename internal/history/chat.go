package history

import (
	"database/sql"
	"time"

	"github.com/pigeonchat/pigeon/internal/chat"
)

// UpsertChat inserts or updates a chat record (idempotent on id).
func (db *DB) UpsertChat(c *chat.Chat) error {
	now := time.Now().UnixMilli()
	var lastAt int64
	var preview string
	if c.LastMessage != nil {
		lastAt = unixMilli(c.LastMessage.Timestamp)
		preview = c.LastMessage.Content
	}
	_, err := db.Exec(`
		INSERT INTO chats (id, name, kind, unread_count, last_message_at, last_message_preview, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			kind = excluded.kind,
			unread_count = excluded.unread_count,
			last_message_at = excluded.last_message_at,
			last_message_preview = excluded.last_message_preview,
			updated_at = excluded.updated_at`,
		c.ID, c.Name, string(c.Kind), c.UnreadCount, lastAt, preview, unixMilli(c.CreatedAt), now)
	return err
}

// SaveChats replaces the cached attributes of every chat in the snapshot.
func (db *DB) SaveChats(chats []chat.Chat) error {
	for i := range chats {
		if err := db.UpsertChat(&chats[i]); err != nil {
			return err
		}
	}
	return nil
}

// ChatSummary is the cached projection of a chat row.
type ChatSummary struct {
	ID                 string
	Name               string
	Kind               chat.ChatKind
	UnreadCount        int
	LastMessageAt      time.Time
	LastMessagePreview string
	CreatedAt          time.Time
}

// ListChats returns cached chats sorted by last message timestamp descending.
func (db *DB) ListChats(limit int) ([]ChatSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Query(`
		SELECT id, name, kind, unread_count, last_message_at, last_message_preview, created_at
		FROM chats
		ORDER BY last_message_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var chats []ChatSummary
	for rows.Next() {
		var c ChatSummary
		var kind string
		var lastAt, createdAt int64
		if err := rows.Scan(&c.ID, &c.Name, &kind, &c.UnreadCount, &lastAt, &c.LastMessagePreview, &createdAt); err != nil {
			return nil, err
		}
		c.Kind = chat.ChatKind(kind)
		c.LastMessageAt = fromUnixMilli(lastAt)
		c.CreatedAt = fromUnixMilli(createdAt)
		chats = append(chats, c)
	}
	return chats, rows.Err()
}

// GetChat returns a single cached chat by id, or nil when absent.
func (db *DB) GetChat(id string) (*ChatSummary, error) {
	var c ChatSummary
	var kind string
	var lastAt, createdAt int64
	err := db.QueryRow(`
		SELECT id, name, kind, unread_count, last_message_at, last_message_preview, created_at
		FROM chats
		WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &kind, &c.UnreadCount, &lastAt, &c.LastMessagePreview, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	c.Kind = chat.ChatKind(kind)
	c.LastMessageAt = fromUnixMilli(lastAt)
	c.CreatedAt = fromUnixMilli(createdAt)
	return &c, nil
}

// Entity converts a cached row back to a chat entity so the client can
// show the last known list before the first sync lands. The last message
// is reconstructed as a preview-only record without identity.
func (c ChatSummary) Entity() chat.Chat {
	out := chat.Chat{
		ID:          c.ID,
		Name:        c.Name,
		Kind:        c.Kind,
		UnreadCount: c.UnreadCount,
		CreatedAt:   c.CreatedAt,
	}
	if c.LastMessagePreview != "" || !c.LastMessageAt.IsZero() {
		out.LastMessage = &chat.Message{
			ChatID:    c.ID,
			Content:   c.LastMessagePreview,
			Timestamp: c.LastMessageAt,
		}
	}
	return out
}

func unixMilli(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromUnixMilli(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
