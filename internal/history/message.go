package history

import (
	"time"

	"github.com/pigeonchat/pigeon/internal/chat"
)

// UpsertMessage inserts or updates a message (idempotent on chat_id + id).
func (db *DB) UpsertMessage(m *chat.Message) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		INSERT INTO messages (id, chat_id, sender_id, sender_name, content, kind, status, reply_to, timestamp, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(chat_id, id) DO UPDATE SET
			sender_name = excluded.sender_name,
			content = excluded.content,
			status = excluded.status`,
		m.ID, m.ChatID, m.Sender.ID, m.Sender.Name, m.Content, string(m.Kind), string(m.Status), m.ReplyToID, unixMilli(m.Timestamp), now)
	return err
}

// SaveMessages caches a batch of confirmed messages. In-flight messages are
// skipped so the cache never contains entries the server may reject.
func (db *DB) SaveMessages(msgs []chat.Message) error {
	for i := range msgs {
		if msgs[i].Pending {
			continue
		}
		if err := db.UpsertMessage(&msgs[i]); err != nil {
			return err
		}
	}
	return nil
}

// ListMessages returns cached messages for a chat using keyset pagination by
// timestamp. Results come back newest first.
func (db *DB) ListMessages(chatID string, beforeTs int64, limit int) ([]chat.Message, error) {
	if limit <= 0 {
		limit = 50
	}
	if beforeTs <= 0 {
		beforeTs = time.Now().UnixMilli() + 1
	}
	rows, err := db.Query(`
		SELECT id, chat_id, sender_id, sender_name, content, kind, status, reply_to, timestamp
		FROM messages
		WHERE chat_id = ? AND timestamp < ?
		ORDER BY timestamp DESC
		LIMIT ?`, chatID, beforeTs, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var msgs []chat.Message
	for rows.Next() {
		var m chat.Message
		var kind, status string
		var ts int64
		if err := rows.Scan(&m.ID, &m.ChatID, &m.Sender.ID, &m.Sender.Name, &m.Content, &kind, &status, &m.ReplyToID, &ts); err != nil {
			return nil, err
		}
		m.Kind = chat.MessageKind(kind)
		m.Status = chat.MessageStatus(status)
		m.Timestamp = fromUnixMilli(ts)
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
