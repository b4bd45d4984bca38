package rest

import (
	"time"

	"github.com/pigeonchat/pigeon/internal/chat"
)

// Adapters between wire records and internal entities. These are pure
// and total: unknown enum values fall back to a safe default, and an
// unparseable timestamp yields the zero time sentinel rather than an
// error. Display layers check Time.IsZero and render a placeholder.

// AdaptUser normalizes a wire user.
func AdaptUser(u User) chat.User {
	return chat.User{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		AvatarURL: u.Avatar,
		Status:    adaptPresence(u.Status),
	}
}

// AdaptMessage normalizes a wire message.
func AdaptMessage(m Message) chat.Message {
	return chat.Message{
		ID:     m.ID,
		ChatID: m.ChatID,
		Sender: chat.Sender{
			ID:        m.Sender.ID,
			Name:      m.Sender.Name,
			AvatarURL: m.Sender.Avatar,
		},
		Content:   m.Content,
		Kind:      adaptKind(m.Type),
		Status:    adaptStatus(m.Status),
		ReplyToID: m.ReplyTo,
		Timestamp: adaptTimestamp(m.Timestamp),
	}
}

// AdaptChat normalizes a wire chat, including its participants and the
// denormalized last message.
func AdaptChat(c Chat) chat.Chat {
	out := chat.Chat{
		ID:          c.ID,
		Name:        c.Name,
		Kind:        adaptChatKind(c.Type),
		UnreadCount: c.UnreadCount,
		CreatedAt:   adaptTimestamp(c.CreatedAt),
	}
	if c.UnreadCount < 0 {
		out.UnreadCount = 0
	}
	for _, p := range c.Participants {
		out.Participants = append(out.Participants, AdaptUser(p))
	}
	if c.LastMessage != nil {
		m := AdaptMessage(*c.LastMessage)
		out.LastMessage = &m
	}
	return out
}

// MessageWire converts an internal message back to its wire shape; the
// mock backend uses it to serve canned data.
func MessageWire(m chat.Message) Message {
	return Message{
		ID:     m.ID,
		ChatID: m.ChatID,
		Sender: Sender{
			ID:     m.Sender.ID,
			Name:   m.Sender.Name,
			Avatar: m.Sender.AvatarURL,
		},
		Content:   m.Content,
		Timestamp: m.Timestamp.UTC().Format(time.RFC3339Nano),
		Type:      string(m.Kind),
		Status:    string(m.Status),
		ReplyTo:   m.ReplyToID,
	}
}

// UserWire converts an internal user back to its wire shape.
func UserWire(u chat.User) User {
	return User{
		ID:     u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Avatar: u.AvatarURL,
		Status: string(u.Status),
	}
}

// ChatWire converts an internal chat back to its wire shape.
func ChatWire(c chat.Chat) Chat {
	out := Chat{
		ID:          c.ID,
		Name:        c.Name,
		Type:        string(c.Kind),
		UnreadCount: c.UnreadCount,
		CreatedAt:   c.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	for _, p := range c.Participants {
		out.Participants = append(out.Participants, UserWire(p))
	}
	if c.LastMessage != nil {
		m := MessageWire(*c.LastMessage)
		out.LastMessage = &m
	}
	return out
}

func adaptPresence(s string) chat.PresenceStatus {
	switch chat.PresenceStatus(s) {
	case chat.PresenceOnline, chat.PresenceOffline, chat.PresenceAway:
		return chat.PresenceStatus(s)
	default:
		return chat.PresenceOffline
	}
}

func adaptStatus(s string) chat.MessageStatus {
	switch chat.MessageStatus(s) {
	case chat.StatusSent, chat.StatusDelivered, chat.StatusRead:
		return chat.MessageStatus(s)
	default:
		return chat.StatusSent
	}
}

func adaptKind(s string) chat.MessageKind {
	switch chat.MessageKind(s) {
	case chat.KindText, chat.KindImage, chat.KindFile:
		return chat.MessageKind(s)
	default:
		return chat.KindText
	}
}

func adaptChatKind(s string) chat.ChatKind {
	if chat.ChatKind(s) == chat.ChatGroup {
		return chat.ChatGroup
	}
	return chat.ChatDirect
}

func adaptTimestamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
