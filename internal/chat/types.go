package chat

import "time"

// PresenceStatus is a user's presence as reported by the backend.
type PresenceStatus string

const (
	PresenceOnline  PresenceStatus = "online"
	PresenceOffline PresenceStatus = "offline"
	PresenceAway    PresenceStatus = "away"
)

// MessageStatus is the delivery state of a message. It only ever
// escalates: sent -> delivered -> read.
type MessageStatus string

const (
	StatusSent      MessageStatus = "sent"
	StatusDelivered MessageStatus = "delivered"
	StatusRead      MessageStatus = "read"
)

// MessageKind is the content type of a message.
type MessageKind string

const (
	KindText  MessageKind = "text"
	KindImage MessageKind = "image"
	KindFile  MessageKind = "file"
)

// ChatKind distinguishes direct conversations from groups.
type ChatKind string

const (
	ChatDirect ChatKind = "direct"
	ChatGroup  ChatKind = "group"
)

// User is a participant. The current user is owned by the session
// manager; remote participants come from the adapters.
type User struct {
	ID        string
	Name      string
	Email     string
	AvatarURL string
	Status    PresenceStatus
}

// Sender is the lightweight sender reference carried on a message.
type Sender struct {
	ID        string
	Name      string
	AvatarURL string
}

// Message is a single message in a conversation. A message is either
// pending (client-only, ID is a locally generated temporary id) or
// confirmed (ID was assigned by the backend). Pending messages
// transition to confirmed via reconciliation or are discarded on send
// failure; confirmed messages are immutable except for Status.
type Message struct {
	ID        string
	ChatID    string
	Sender    Sender
	Content   string
	Kind      MessageKind
	Status    MessageStatus
	ReplyToID string
	Timestamp time.Time

	// Pending marks a message that has not been confirmed by the
	// backend yet. The discard guard keys off this flag, never off the
	// shape of the id.
	Pending bool
}

// Chat is a conversation with its denormalized last message and unread
// counter.
type Chat struct {
	ID           string
	Name         string
	Kind         ChatKind
	Participants []User
	LastMessage  *Message
	UnreadCount  int
	CreatedAt    time.Time
}

// MaxContentLength bounds the content of an outgoing message, counted
// in characters, not bytes. The backend rejects anything outside
// 1..MaxContentLength.
const MaxContentLength = 1000
