package bus

import "time"

// Event is a domain event published on the bus.
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}

// Event kinds. Subscribers filter by namespace prefix, e.g. "state."
// receives every store mutation event.
const (
	// Session lifecycle.
	KindSessionStatusChanged = "session.status_changed"
	KindSessionAuthenticated = "session.authenticated"
	KindSessionSignedOut     = "session.signed_out"

	// Conversation store mutations.
	KindStateChats    = "state.chats"
	KindStateMessages = "state.messages"
	KindStateError    = "state.error"
)
