package state

import (
	"sort"
	"sync"
	"time"

	"github.com/pigeonchat/pigeon/internal/bus"
	"github.com/pigeonchat/pigeon/internal/chat"
)

// Store is the single source of truth for chats, the active selection
// and the in-memory message cache. All mutation goes through named
// actions; each action is atomic under the store lock and never fails.
// Failure handling lives in the sync controller, which translates
// backend errors into SetError plus compensating actions.
type Store struct {
	mu sync.RWMutex

	chats        map[string]*chat.Chat
	activeChatID string
	messages     []chat.Message
	loading      bool
	err          error

	bus *bus.Bus
}

// New creates an empty store. The bus may be nil in tests; mutation
// events are then simply not published.
func New(b *bus.Bus) *Store {
	return &Store{
		chats: make(map[string]*chat.Chat),
		bus:   b,
	}
}

func (s *Store) publish(kind string, payload any) {
	if s.bus != nil {
		s.bus.Publish(bus.Event{Kind: kind, Timestamp: time.Now(), Payload: payload})
	}
}

// SetChats replaces the chat collection wholesale and clears any prior
// error. Used after a full list refresh.
func (s *Store) SetChats(list []chat.Chat) {
	s.mu.Lock()
	s.chats = make(map[string]*chat.Chat, len(list))
	for i := range list {
		c := list[i]
		s.chats[c.ID] = &c
	}
	s.err = nil
	s.mu.Unlock()

	s.publish(bus.KindStateChats, len(list))
}

// SetActiveChat sets the active selection only. Messages and unread
// counters are untouched; clearing the unread count is a separate,
// explicit step so a caller can select without side effects.
func (s *Store) SetActiveChat(chatID string) {
	s.mu.Lock()
	s.activeChatID = chatID
	s.mu.Unlock()
}

// SetMessagesForChat replaces the cached messages belonging to chatID,
// leaving messages of other chats untouched. A late fetch for one chat
// can therefore never wipe another chat's already-loaded messages.
func (s *Store) SetMessagesForChat(chatID string, list []chat.Message) {
	s.mu.Lock()
	kept := s.messages[:0:0]
	for _, m := range s.messages {
		if m.ChatID != chatID {
			kept = append(kept, m)
		}
	}
	for _, m := range list {
		if m.ChatID == chatID {
			kept = append(kept, m)
		}
	}
	s.messages = kept
	s.mu.Unlock()

	s.publish(bus.KindStateMessages, chatID)
}

// AppendMessage inserts msg at the end of the cache iff no message with
// the same id exists. On insert of a confirmed message the owning
// chat's LastMessage is bumped when the timestamp is newer, so an
// out-of-order historical arrival never clobbers a live one. Pending
// messages never become LastMessage: that slot holds the most recently
// confirmed message only.
func (s *Store) AppendMessage(msg chat.Message) {
	s.mu.Lock()
	if s.indexOf(msg.ID) >= 0 {
		s.mu.Unlock()
		return
	}
	s.messages = append(s.messages, msg)
	if !msg.Pending {
		s.bumpLastMessage(msg, "")
	}
	s.mu.Unlock()

	s.publish(bus.KindStateMessages, msg.ChatID)
}

// ReconcileMessage replaces the pending entry with id tempID by the
// backend-confirmed message. If no such entry exists (already
// reconciled, or evicted) it falls back to an idempotent append, so a
// late confirmation is harmless either way. The confirmed id never
// ends up in the cache twice, even when it already arrived through a
// concurrent fetch.
func (s *Store) ReconcileMessage(tempID string, confirmed chat.Message) {
	s.mu.Lock()
	if i := s.indexOf(tempID); i >= 0 && s.messages[i].Pending {
		if s.indexOf(confirmed.ID) >= 0 {
			// The confirmed copy already arrived through another path;
			// drop the pending entry instead of duplicating the id.
			s.messages = append(s.messages[:i], s.messages[i+1:]...)
		} else {
			s.messages[i] = confirmed
		}
	} else if s.indexOf(confirmed.ID) < 0 {
		s.messages = append(s.messages, confirmed)
	}
	s.bumpLastMessage(confirmed, tempID)
	s.mu.Unlock()

	s.publish(bus.KindStateMessages, confirmed.ChatID)
}

// DiscardMessage removes the pending entry with id tempID; used when a
// send fails. Confirmed messages are never removed, even on id
// collision: the guard is the Pending flag, not the id shape.
func (s *Store) DiscardMessage(tempID string) {
	s.mu.Lock()
	i := s.indexOf(tempID)
	if i < 0 || !s.messages[i].Pending {
		s.mu.Unlock()
		return
	}
	chatID := s.messages[i].ChatID
	s.messages = append(s.messages[:i], s.messages[i+1:]...)
	s.mu.Unlock()

	s.publish(bus.KindStateMessages, chatID)
}

// MarkChatRead zeroes the chat's unread counter. Unknown ids are a
// no-op.
func (s *Store) MarkChatRead(chatID string) {
	s.mu.Lock()
	if c, ok := s.chats[chatID]; ok {
		c.UnreadCount = 0
	}
	s.mu.Unlock()

	s.publish(bus.KindStateChats, chatID)
}

// SetLoading sets the loading flag.
func (s *Store) SetLoading(loading bool) {
	s.mu.Lock()
	s.loading = loading
	s.mu.Unlock()
}

// SetError records the last error for passive UI consumption. It does
// not clear the loading flag; masking a failure as still-in-progress
// would hide it from the user.
func (s *Store) SetError(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()

	s.publish(bus.KindStateError, err)
}

// Reset clears all state; invoked when the session signs out.
func (s *Store) Reset() {
	s.mu.Lock()
	s.chats = make(map[string]*chat.Chat)
	s.activeChatID = ""
	s.messages = nil
	s.loading = false
	s.err = nil
	s.mu.Unlock()

	s.publish(bus.KindStateChats, 0)
}

// indexOf returns the cache index of the message with the given id, or
// -1. Callers must hold the lock.
func (s *Store) indexOf(id string) int {
	for i := range s.messages {
		if s.messages[i].ID == id {
			return i
		}
	}
	return -1
}

// bumpLastMessage updates the owning chat's LastMessage when msg is
// newer than the current one, or when the current one is the pending
// entry being replaced (replacedID). Callers must hold the lock.
func (s *Store) bumpLastMessage(msg chat.Message, replacedID string) {
	c, ok := s.chats[msg.ChatID]
	if !ok {
		return
	}
	last := c.LastMessage
	if last == nil || (replacedID != "" && last.ID == replacedID) || msg.Timestamp.After(last.Timestamp) {
		m := msg
		c.LastMessage = &m
	}
}

// Chats returns a snapshot of the chat collection ordered by last
// message time, newest first; chats without messages sort by creation
// time, then by name.
func (s *Store) Chats() []chat.Chat {
	s.mu.RLock()
	out := make([]chat.Chat, 0, len(s.chats))
	for _, c := range s.chats {
		out = append(out, *c)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		ti, tj := chatSortTime(out[i]), chatSortTime(out[j])
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func chatSortTime(c chat.Chat) time.Time {
	if c.LastMessage != nil {
		return c.LastMessage.Timestamp
	}
	return c.CreatedAt
}

// Chat returns the chat with the given id, or nil.
func (s *Store) Chat(chatID string) *chat.Chat {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.chats[chatID]; ok {
		copied := *c
		return &copied
	}
	return nil
}

// ActiveChatID returns the id of the active chat, or "".
func (s *Store) ActiveChatID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeChatID
}

// MessagesFor returns the cached messages of one chat in receipt order.
func (s *Store) MessagesFor(chatID string) []chat.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []chat.Message
	for _, m := range s.messages {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	return out
}

// Loading reports whether a fetch is in progress.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err returns the last recorded error, or nil.
func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}
