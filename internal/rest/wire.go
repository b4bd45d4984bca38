package rest

// Wire shapes exchanged with the backend. Timestamps travel as ISO-8601
// text; senders are lightweight references, not full users.

// User is the wire shape of a user record.
type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Avatar string `json:"avatar,omitempty"`
	Status string `json:"status"`
}

// Sender is the wire shape of a message's sender reference.
type Sender struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// Message is the wire shape of a message.
type Message struct {
	ID        string `json:"id"`
	ChatID    string `json:"chatId"`
	Sender    Sender `json:"sender"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
	Status    string `json:"status"`
	ReplyTo   string `json:"replyTo,omitempty"`
}

// Chat is the wire shape of a chat.
type Chat struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Type         string   `json:"type"`
	Participants []User   `json:"participants"`
	LastMessage  *Message `json:"lastMessage,omitempty"`
	UnreadCount  int      `json:"unreadCount"`
	CreatedAt    string   `json:"createdAt"`
}

// SendRequest is the body of POST /api/chats/{id}/messages.
type SendRequest struct {
	Content string `json:"content"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by the login and register endpoints.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// ErrorResponse is the body of any non-2xx answer.
type ErrorResponse struct {
	Error string `json:"error"`
}
