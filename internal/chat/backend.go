package chat

import "context"

// Backend is the messaging API the sync controller talks to. The
// concrete transport (the REST client, or a fake in tests) is hidden
// behind this interface; nothing else in the client calls it.
type Backend interface {
	ListChats(ctx context.Context) ([]Chat, error)
	ListMessages(ctx context.Context, chatID string) ([]Message, error)
	SendMessage(ctx context.Context, chatID, content string) (Message, error)
	MarkRead(ctx context.Context, chatID string) error
}

// SessionProvider exposes the current authenticated identity. The core
// treats it as read-only; auth state changes arrive as bus events.
type SessionProvider interface {
	CurrentUser() *User
	IsAuthenticated() bool
}
