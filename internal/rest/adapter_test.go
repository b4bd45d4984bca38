package rest

import (
	"testing"
	"time"

	"github.com/pigeonchat/pigeon/internal/chat"
)

func TestAdaptMessage(t *testing.T) {
	wire := Message{
		ID:        "m1",
		ChatID:    "1",
		Sender:    Sender{ID: "u2", Name: "Juan Perez"},
		Content:   "Hi!",
		Timestamp: "2025-06-01T12:00:00Z",
		Type:      "text",
		Status:    "read",
	}

	m := AdaptMessage(wire)
	if m.ID != "m1" || m.ChatID != "1" || m.Content != "Hi!" {
		t.Errorf("message = %+v", m)
	}
	if m.Sender.ID != "u2" || m.Sender.Name != "Juan Perez" {
		t.Errorf("sender = %+v", m.Sender)
	}
	if m.Status != chat.StatusRead || m.Kind != chat.KindText {
		t.Errorf("status/kind = %v/%v", m.Status, m.Kind)
	}
	want := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	if !m.Timestamp.Equal(want) {
		t.Errorf("timestamp = %v, want %v", m.Timestamp, want)
	}
	if m.Pending {
		t.Error("adapted message must not be pending")
	}
}

func TestAdaptEnumFallbacks(t *testing.T) {
	tests := []struct {
		name       string
		status     string
		kind       string
		presence   string
		wantStatus chat.MessageStatus
		wantKind   chat.MessageKind
		wantPres   chat.PresenceStatus
	}{
		{"known values", "delivered", "image", "away", chat.StatusDelivered, chat.KindImage, chat.PresenceAway},
		{"unknown values", "exploded", "hologram", "teleporting", chat.StatusSent, chat.KindText, chat.PresenceOffline},
		{"empty values", "", "", "", chat.StatusSent, chat.KindText, chat.PresenceOffline},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := AdaptMessage(Message{Status: tt.status, Type: tt.kind})
			if m.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", m.Status, tt.wantStatus)
			}
			if m.Kind != tt.wantKind {
				t.Errorf("kind = %q, want %q", m.Kind, tt.wantKind)
			}
			u := AdaptUser(User{Status: tt.presence})
			if u.Status != tt.wantPres {
				t.Errorf("presence = %q, want %q", u.Status, tt.wantPres)
			}
		})
	}
}

func TestAdaptBadTimestampYieldsSentinel(t *testing.T) {
	for _, raw := range []string{"", "yesterday", "2025-13-99T99:99:99Z"} {
		m := AdaptMessage(Message{ID: "m1", Timestamp: raw})
		if !m.Timestamp.IsZero() {
			t.Errorf("timestamp for %q = %v, want zero sentinel", raw, m.Timestamp)
		}
	}
}

func TestAdaptChat(t *testing.T) {
	wire := Chat{
		ID:   "1",
		Name: "Juan Perez",
		Type: "direct",
		Participants: []User{
			{ID: "u2", Name: "Juan Perez", Status: "online"},
		},
		LastMessage: &Message{ID: "m9", ChatID: "1", Content: "later", Timestamp: "2025-06-01T12:00:00Z"},
		UnreadCount: 2,
		CreatedAt:   "2024-01-01T00:00:00Z",
	}

	c := AdaptChat(wire)
	if c.ID != "1" || c.Kind != chat.ChatDirect || c.UnreadCount != 2 {
		t.Errorf("chat = %+v", c)
	}
	if len(c.Participants) != 1 || c.Participants[0].Status != chat.PresenceOnline {
		t.Errorf("participants = %+v", c.Participants)
	}
	if c.LastMessage == nil || c.LastMessage.ID != "m9" || c.LastMessage.ChatID != "1" {
		t.Errorf("lastMessage = %+v", c.LastMessage)
	}
}

func TestAdaptChatNegativeUnreadClamped(t *testing.T) {
	c := AdaptChat(Chat{ID: "1", UnreadCount: -3})
	if c.UnreadCount != 0 {
		t.Errorf("unread = %d, want 0", c.UnreadCount)
	}
}

func TestMessageRoundTrip(t *testing.T) {
	orig := chat.Message{
		ID:        "m42",
		ChatID:    "1",
		Sender:    chat.Sender{ID: "u1", Name: "Demo User"},
		Content:   "hello",
		Kind:      chat.KindText,
		Status:    chat.StatusDelivered,
		Timestamp: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	got := AdaptMessage(MessageWire(orig))
	if got.ID != orig.ID || got.ChatID != orig.ChatID || got.Content != orig.Content {
		t.Errorf("round trip changed identity: %+v", got)
	}
	if got.Sender != orig.Sender {
		t.Errorf("round trip changed sender: %+v", got.Sender)
	}
	if !got.Timestamp.Equal(orig.Timestamp) {
		t.Errorf("round trip changed timestamp: %v", got.Timestamp)
	}
	if got.Status != orig.Status || got.Kind != orig.Kind {
		t.Errorf("round trip changed status/kind: %v/%v", got.Status, got.Kind)
	}
}
