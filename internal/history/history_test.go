package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/pigeonchat/pigeon/internal/chat"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestMigrateAppliesOnFreshDB(t *testing.T) {
	db := testDB(t)

	// testDB already ran Migrate, so run it again to check idempotency.
	result, err := db.Migrate()
	if err != nil {
		t.Fatal(err)
	}
	if result.Changed {
		t.Error("second Migrate() should report Changed=false")
	}
	if result.Version != 1 {
		t.Errorf("version = %d, want 1", result.Version)
	}
}

func TestChatUpsertAndList(t *testing.T) {
	db := testDB(t)

	c := &chat.Chat{
		ID:   "1",
		Name: "Juan Perez",
		Kind: chat.ChatDirect,
		LastMessage: &chat.Message{
			ID:        "m1",
			ChatID:    "1",
			Content:   "hello",
			Timestamp: time.UnixMilli(1000),
		},
	}
	if err := db.UpsertChat(c); err != nil {
		t.Fatal(err)
	}

	// Update name.
	c.Name = "Juan P."
	if err := db.UpsertChat(c); err != nil {
		t.Fatal(err)
	}

	chats, err := db.ListChats(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(chats) != 1 {
		t.Fatalf("got %d chats, want 1", len(chats))
	}
	if chats[0].Name != "Juan P." {
		t.Errorf("name = %q, want Juan P.", chats[0].Name)
	}
	if chats[0].LastMessagePreview != "hello" {
		t.Errorf("preview = %q, want hello", chats[0].LastMessagePreview)
	}
}

func TestListChatsOrderedByLastMessage(t *testing.T) {
	db := testDB(t)

	old := &chat.Chat{ID: "1", Name: "Old", LastMessage: &chat.Message{ID: "a", ChatID: "1", Timestamp: time.UnixMilli(1000)}}
	fresh := &chat.Chat{ID: "2", Name: "Fresh", LastMessage: &chat.Message{ID: "b", ChatID: "2", Timestamp: time.UnixMilli(2000)}}
	if err := db.SaveChats([]chat.Chat{*old, *fresh}); err != nil {
		t.Fatal(err)
	}

	chats, err := db.ListChats(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(chats) != 2 {
		t.Fatalf("got %d chats, want 2", len(chats))
	}
	if chats[0].ID != "2" {
		t.Errorf("first chat = %q, want 2 (most recent)", chats[0].ID)
	}
}

func TestGetChat(t *testing.T) {
	db := testDB(t)

	if err := db.UpsertChat(&chat.Chat{ID: "a", Name: "A"}); err != nil {
		t.Fatal(err)
	}
	c, err := db.GetChat("a")
	if err != nil {
		t.Fatal(err)
	}
	if c == nil || c.Name != "A" {
		t.Errorf("got %v, want A", c)
	}

	// Non-existent.
	c, err = db.GetChat("missing")
	if err != nil {
		t.Fatal(err)
	}
	if c != nil {
		t.Errorf("expected nil for missing chat")
	}
}

func TestMessageUpsertIdempotent(t *testing.T) {
	db := testDB(t)

	msg := &chat.Message{ID: "m1", ChatID: "1", Content: "hello", Kind: chat.KindText, Status: chat.StatusSent, Timestamp: time.UnixMilli(1000)}
	if err := db.UpsertMessage(msg); err != nil {
		t.Fatal(err)
	}
	// Upsert again should not create a duplicate.
	msg.Content = "hello updated"
	if err := db.UpsertMessage(msg); err != nil {
		t.Fatal(err)
	}

	msgs, err := db.ListMessages("1", 0, 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1 (idempotent upsert failed)", len(msgs))
	}
	if msgs[0].Content != "hello updated" {
		t.Errorf("content = %q, want hello updated", msgs[0].Content)
	}
}

func TestSaveMessagesSkipsInFlight(t *testing.T) {
	db := testDB(t)

	msgs := []chat.Message{
		{ID: "m1", ChatID: "1", Content: "confirmed", Timestamp: time.UnixMilli(1000)},
		{ID: "temp-1", ChatID: "1", Content: "in flight", Pending: true, Timestamp: time.UnixMilli(2000)},
	}
	if err := db.SaveMessages(msgs); err != nil {
		t.Fatal(err)
	}

	cached, err := db.ListMessages("1", 0, 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(cached) != 1 {
		t.Fatalf("got %d cached messages, want 1", len(cached))
	}
	if cached[0].ID != "m1" {
		t.Errorf("cached id = %q, want m1", cached[0].ID)
	}
}

func TestListMessagesScopedToChat(t *testing.T) {
	db := testDB(t)

	if err := db.UpsertMessage(&chat.Message{ID: "a", ChatID: "1", Content: "one", Timestamp: time.UnixMilli(1000)}); err != nil {
		t.Fatal(err)
	}
	if err := db.UpsertMessage(&chat.Message{ID: "b", ChatID: "2", Content: "two", Timestamp: time.UnixMilli(2000)}); err != nil {
		t.Fatal(err)
	}

	msgs, err := db.ListMessages("1", 0, 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 1 || msgs[0].ID != "a" {
		t.Fatalf("got %v, want only message a", msgs)
	}
}

func TestChatSummaryEntity(t *testing.T) {
	db := testDB(t)

	orig := &chat.Chat{
		ID:          "7",
		Name:        "Maria Lopez",
		Kind:        chat.ChatDirect,
		UnreadCount: 3,
		LastMessage: &chat.Message{ID: "m9", ChatID: "7", Content: "see you", Timestamp: time.UnixMilli(5000)},
		CreatedAt:   time.UnixMilli(100),
	}
	if err := db.UpsertChat(orig); err != nil {
		t.Fatal(err)
	}

	cached, err := db.ListChats(10)
	if err != nil {
		t.Fatal(err)
	}
	got := cached[0].Entity()
	if got.ID != "7" || got.Name != "Maria Lopez" || got.UnreadCount != 3 {
		t.Errorf("entity = %+v", got)
	}
	if got.LastMessage == nil || got.LastMessage.Content != "see you" {
		t.Fatalf("lastMessage = %+v, want preview", got.LastMessage)
	}
	if !got.LastMessage.Timestamp.Equal(time.UnixMilli(5000)) {
		t.Errorf("timestamp = %v", got.LastMessage.Timestamp)
	}

	// A chat with no history yields no last message.
	if err := db.UpsertChat(&chat.Chat{ID: "8", Name: "Empty"}); err != nil {
		t.Fatal(err)
	}
	cached, err = db.ListChats(10)
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range cached {
		if c.ID == "8" && c.Entity().LastMessage != nil {
			t.Error("expected nil LastMessage for chat without history")
		}
	}
}
