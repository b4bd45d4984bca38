package mockapi

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pigeonchat/pigeon/internal/chat"
)

// memStore holds the server's in-memory dataset. All access goes through
// the mutex; handlers run concurrently and the canned-reply timer fires
// from its own goroutine.
type memStore struct {
	mu        sync.Mutex
	users     map[string]*account // keyed by email
	usersByID map[string]*account
	chats     map[string]*chat.Chat
	messages  map[string][]chat.Message // keyed by chat id
}

type account struct {
	user     chat.User
	password string
}

func newMemStore() *memStore {
	s := &memStore{
		users:     make(map[string]*account),
		usersByID: make(map[string]*account),
		chats:     make(map[string]*chat.Chat),
		messages:  make(map[string][]chat.Message),
	}
	s.seed()
	return s
}

// seed loads the demo dataset: one known account and two direct chats
// with a little bit of history.
func (s *memStore) seed() {
	demo := &account{
		user: chat.User{
			ID:     "u-demo",
			Name:   "Demo User",
			Email:  "demo@pigeon.chat",
			Status: chat.PresenceOnline,
		},
		password: "pigeon",
	}
	s.users[demo.user.Email] = demo
	s.usersByID[demo.user.ID] = demo

	juan := chat.User{ID: "u-juan", Name: "Juan Perez", Email: "juan@pigeon.chat", Status: chat.PresenceOnline}
	maria := chat.User{ID: "u-maria", Name: "Maria Lopez", Email: "maria@pigeon.chat", Status: chat.PresenceAway}

	base := time.Now().Add(-2 * time.Hour)

	m1 := chat.Message{
		ID:        "m-1",
		ChatID:    "1",
		Sender:    chat.Sender{ID: juan.ID, Name: juan.Name},
		Content:   "Hola! How is the project going?",
		Kind:      chat.KindText,
		Status:    chat.StatusDelivered,
		Timestamp: base.Add(10 * time.Minute),
	}
	m2 := chat.Message{
		ID:        "m-2",
		ChatID:    "2",
		Sender:    chat.Sender{ID: maria.ID, Name: maria.Name},
		Content:   "Did you see the release notes?",
		Kind:      chat.KindText,
		Status:    chat.StatusDelivered,
		Timestamp: base.Add(30 * time.Minute),
	}

	s.chats["1"] = &chat.Chat{
		ID:           "1",
		Name:         juan.Name,
		Kind:         chat.ChatDirect,
		Participants: []chat.User{demo.user, juan},
		LastMessage:  &m1,
		UnreadCount:  1,
		CreatedAt:    base,
	}
	s.chats["2"] = &chat.Chat{
		ID:           "2",
		Name:         maria.Name,
		Kind:         chat.ChatDirect,
		Participants: []chat.User{demo.user, maria},
		LastMessage:  &m2,
		UnreadCount:  2,
		CreatedAt:    base,
	}
	s.messages["1"] = []chat.Message{m1}
	s.messages["2"] = []chat.Message{
		{
			ID:        "m-0",
			ChatID:    "2",
			Sender:    chat.Sender{ID: demo.user.ID, Name: demo.user.Name},
			Content:   "Morning Maria",
			Kind:      chat.KindText,
			Status:    chat.StatusRead,
			Timestamp: base.Add(25 * time.Minute),
		},
		m2,
	}
}

func (s *memStore) authenticate(email, password string) (chat.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.users[strings.ToLower(email)]
	if !ok || acc.password != password {
		return chat.User{}, false
	}
	return acc.user, true
}

func (s *memStore) register(name, email, password string) (chat.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = strings.ToLower(email)
	if _, exists := s.users[email]; exists {
		return chat.User{}, false
	}
	acc := &account{
		user: chat.User{
			ID:     "u-" + uuid.NewString(),
			Name:   name,
			Email:  email,
			Status: chat.PresenceOnline,
		},
		password: password,
	}
	s.users[email] = acc
	s.usersByID[acc.user.ID] = acc
	return acc.user, true
}

func (s *memStore) userByID(id string) (chat.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.usersByID[id]
	if !ok {
		return chat.User{}, false
	}
	return acc.user, true
}

func (s *memStore) listChats() []chat.Chat {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]chat.Chat, 0, len(s.chats))
	for _, c := range s.chats {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		ti, tj := chatSortTime(out[i]), chatSortTime(out[j])
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func chatSortTime(c chat.Chat) time.Time {
	if c.LastMessage != nil {
		return c.LastMessage.Timestamp
	}
	return c.CreatedAt
}

func (s *memStore) listMessages(chatID string) ([]chat.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.chats[chatID]; !ok {
		return nil, false
	}
	msgs := s.messages[chatID]
	out := make([]chat.Message, len(msgs))
	copy(out, msgs)
	return out, true
}

// appendMessage stores a new message, updates the chat's last message and,
// when the sender is not a participant the caller authenticated as, bumps
// the unread counter.
func (s *memStore) appendMessage(m chat.Message, countUnread bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.chats[m.ChatID]
	if !ok {
		return false
	}
	s.messages[m.ChatID] = append(s.messages[m.ChatID], m)
	last := m
	c.LastMessage = &last
	if countUnread {
		c.UnreadCount++
	}
	return true
}

func (s *memStore) markRead(chatID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.chats[chatID]
	if !ok {
		return false
	}
	c.UnreadCount = 0
	return true
}

// peerOf returns the participant other than userID in a direct chat.
func (s *memStore) peerOf(chatID, userID string) (chat.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.chats[chatID]
	if !ok {
		return chat.User{}, false
	}
	for _, p := range c.Participants {
		if p.ID != userID {
			return p, true
		}
	}
	return chat.User{}, false
}
